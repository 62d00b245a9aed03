package objects

import (
	"github.com/mitchellh/copystructure"
)

// Clone returns a deep copy of src. Shared tables (defaults, fetched IAM
// policies) are cloned before mutation so no two callers alias state.
func Clone(src interface{}) interface{} {
	out, err := copystructure.Copy(src)
	if err != nil {
		// copystructure only fails on types it cannot reflect over,
		// which none of ours are
		panic(err)
	}
	return out
}
