package projectfile

import (
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/aristath/miniplan/internal/scheduler"
)

// hclDocument is the HCL layout: one labelled block per activity.
//
//	activity "B" {
//	  name         = "Foundation"
//	  duration     = 4
//	  predecessors = ["A"]
//	}
type hclDocument struct {
	Activities []hclActivity `hcl:"activity,block"`
}

type hclActivity struct {
	ID           string   `hcl:"id,label"`
	Name         string   `hcl:"name"`
	Duration     int      `hcl:"duration"`
	Predecessors []string `hcl:"predecessors,optional"`
	Resource     string   `hcl:"resource,optional"`
	Description  string   `hcl:"description,optional"`
	ES           int      `hcl:"es,optional"`
	EF           int      `hcl:"ef,optional"`
	LS           int      `hcl:"ls,optional"`
	LF           int      `hcl:"lf,optional"`
	TotalFloat   int      `hcl:"total_float,optional"`
	FreeFloat    int      `hcl:"free_float,optional"`
	IsCritical   bool     `hcl:"is_critical,optional"`
}

func decodeHCL(r io.Reader) ([]record, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, "project.hcl")
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}

	var doc hclDocument
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	recs := make([]record, 0, len(doc.Activities))
	for _, b := range doc.Activities {
		recs = append(recs, record{
			ID:           b.ID,
			Name:         b.Name,
			Duration:     b.Duration,
			Predecessors: b.Predecessors,
			Resource:     b.Resource,
			Description:  b.Description,
			ES:           b.ES,
			EF:           b.EF,
			LS:           b.LS,
			LF:           b.LF,
			TotalFloat:   b.TotalFloat,
			FreeFloat:    b.FreeFloat,
			IsCritical:   b.IsCritical,
		})
	}
	return recs, nil
}

func encodeHCL(w io.Writer, recs []record) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	for i, r := range recs {
		if i > 0 {
			root.AppendNewline()
		}
		body := root.AppendNewBlock("activity", []string{r.ID}).Body()
		body.SetAttributeValue("name", cty.StringVal(r.Name))
		body.SetAttributeValue("duration", cty.NumberIntVal(int64(r.Duration)))
		body.SetAttributeValue("predecessors", stringList(r.Predecessors))
		if r.Resource != "" {
			body.SetAttributeValue("resource", cty.StringVal(r.Resource))
		}
		if r.Description != "" {
			body.SetAttributeValue("description", cty.StringVal(r.Description))
		}

		// Unscheduled activities carry no dates.
		if r.dates() == (scheduler.Dates{}) {
			continue
		}
		body.SetAttributeValue("es", cty.NumberIntVal(int64(r.ES)))
		body.SetAttributeValue("ef", cty.NumberIntVal(int64(r.EF)))
		body.SetAttributeValue("ls", cty.NumberIntVal(int64(r.LS)))
		body.SetAttributeValue("lf", cty.NumberIntVal(int64(r.LF)))
		body.SetAttributeValue("total_float", cty.NumberIntVal(int64(r.TotalFloat)))
		body.SetAttributeValue("free_float", cty.NumberIntVal(int64(r.FreeFloat)))
		body.SetAttributeValue("is_critical", cty.BoolVal(r.IsCritical))
	}

	_, err := f.WriteTo(w)
	return err
}

func stringList(ids []string) cty.Value {
	if len(ids) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, 0, len(ids))
	for _, id := range ids {
		vals = append(vals, cty.StringVal(id))
	}
	return cty.ListVal(vals)
}
