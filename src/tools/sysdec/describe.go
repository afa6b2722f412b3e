package sysdec

import (
	"fmt"
	"io"
	"sort"
	"text/template"

	"github.com/dustin/go-humanize"
)

var describeTemplate = template.Must(template.New("device").Funcs(template.FuncMap{
	"hex":    func(v int) string { return fmt.Sprintf("0x%05x", v) },
	"size":   func(v uintptr) string { return humanize.IBytes(uint64(v)) },
	"fields": sortedFields,
	"enums":  sortedEnums,
}).Parse(describeTemplateText))

const describeTemplateText = `{{.Vendor}} {{.Name}} ({{.Compatible}}), {{.Cpu.Name}} x{{.NumCores}}
{{- range .Peripherals}}
{{.Name}} {{.Range}} {{size .Range.Size}}
{{- range .Registers}}
  {{hex .AddressOffset}} {{.Name}}{{if .Dim}}[{{.Dim}}] stride {{hex .DimIncrement}}{{end}} {{.Access}}
{{- range fields .}}
    {{.BitRange}} {{.Name}} {{.Access}}
{{- range enums .}}
      {{.Value}} = {{.Name}}
{{- end}}
{{- end}}
{{- end}}
{{- end}}
`

func sortedFields(r *RegisterDef) []*FieldDef {
	result := make([]*FieldDef, 0, len(r.Field))
	for _, f := range r.Field {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BitRange.Lsb > result[j].BitRange.Lsb })
	return result
}

func sortedEnums(f *FieldDef) []*EnumeratedValueDef {
	result := make([]*EnumeratedValueDef, 0, len(f.EnumeratedValue))
	for _, e := range f.EnumeratedValue {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Value < result[j].Value })
	return result
}

// Describe writes a human readable register map of the device.
func Describe(d *DeviceDef, w io.Writer) error {
	if err := d.Resolve(); err != nil {
		return err
	}
	if err := describeTemplate.Execute(w, d); err != nil {
		return fmt.Errorf("sysdec: describing %s: %w", d.Name, err)
	}
	return nil
}
