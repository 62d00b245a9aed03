package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
)

var (
	lineSeparator = strings.Repeat("-", 80)
)

func FormatTable(table *tablewriter.Table) {
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("-")
	table.SetColumnSeparator(" ")
}

func PrintImportant(message string, header string) {
	if header == "" {
		header = "IMPORTANT"
	}
	fmt.Println(lineSeparator)
	fmt.Println(header)
	fmt.Println(lineSeparator)
	fmt.Println(message)
	fmt.Println(lineSeparator)
	fmt.Println("")
}

func PrintJSON(val interface{}) {
	data, _ := json.MarshalIndent(val, "", "  ")
	fmt.Println(string(data))
}
