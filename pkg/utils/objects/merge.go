package objects

import (
	"fmt"
	"reflect"

	"github.com/imdario/mergo"
)

// fill in empty fields on dest from src, recursing into structs
func MergeObject(dest, src interface{}) {
	err := mergo.Merge(dest, src, mergo.WithTransformers(fillTransformers{}))
	if err != nil {
		fmt.Printf("error merging: %v and %v, %v\n",
			dest, src, err)
	}
}

type fillTransformers struct{}

func (t fillTransformers) Transformer(oType reflect.Type) func(dst, src reflect.Value) error {
	if oType.Kind() == reflect.Slice {
		return fillSliceValue
	}
	return nil
}

// a slice is taken wholesale from src only when dest has none at all;
// a partially filled slice on dest wins
func fillSliceValue(dst, src reflect.Value) error {
	if dst.Len() == 0 && src.Len() > 0 {
		dst.Set(src)
	}
	return nil
}
