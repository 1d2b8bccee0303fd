package db

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mithrel/sheetsite/pkg/api"
)

// encodeRows stores rows as a ListValue of string ListValues.
func encodeRows(rows []api.Row) ([]byte, error) {
	outer := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(rows))}
	for _, r := range rows {
		inner := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(r))}
		for _, c := range r {
			inner.Values = append(inner.Values, structpb.NewStringValue(c))
		}
		outer.Values = append(outer.Values, structpb.NewListValue(inner))
	}
	return proto.Marshal(outer)
}

func decodeRows(b []byte) ([]api.Row, error) {
	var outer structpb.ListValue
	if err := proto.Unmarshal(b, &outer); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	rows := make([]api.Row, 0, len(outer.GetValues()))
	for _, v := range outer.GetValues() {
		cells := v.GetListValue().GetValues()
		r := make(api.Row, len(cells))
		for i, c := range cells {
			r[i] = c.GetStringValue()
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// encodeProducts stores each product's raw feed fields as a Struct so a
// snapshot survives changes to the typed Product mapping.
func encodeProducts(products []api.Product) ([]byte, error) {
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(products))}
	for _, p := range products {
		fields := p.Fields
		if fields == nil {
			fields = typedFields(p)
		}
		st := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(fields))}
		for k, v := range fields {
			st.Fields[k] = structpb.NewStringValue(v)
		}
		list.Values = append(list.Values, structpb.NewStructValue(st))
	}
	return proto.Marshal(list)
}

func decodeProducts(b []byte) ([]api.Product, error) {
	var list structpb.ListValue
	if err := proto.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	out := make([]api.Product, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		src := v.GetStructValue().GetFields()
		fields := make(map[string]string, len(src))
		for k, f := range src {
			fields[k] = f.GetStringValue()
		}
		out = append(out, api.ProductFromFields(fields))
	}
	return out, nil
}

func typedFields(p api.Product) map[string]string {
	return map[string]string{
		api.FieldCode:          p.Code,
		api.FieldCategory:      p.Category,
		api.FieldNameZH:        p.NameZH,
		api.FieldNameEN:        p.NameEN,
		api.FieldPacking:       p.Packing,
		api.FieldUnit:          p.Unit,
		api.FieldDescriptionZH: p.DescriptionZH,
		api.FieldDescriptionEN: p.DescriptionEN,
		api.FieldImages:        strings.Join(p.Images, ","),
	}
}
