package notion

import (
	"time"

	"github.com/jomei/notionapi"
)

// Property builders and extractors for mapping flat tabular rows onto Notion
// page properties. Extractors return zero values for missing or differently
// typed properties rather than erroring, since Notion schemas drift.

// Title builds a title property with a single text segment.
func Title(v string) notionapi.TitleProperty {
	return notionapi.TitleProperty{
		Type: notionapi.PropertyTypeTitle,
		Title: []notionapi.RichText{
			{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: v}},
		},
	}
}

// Text builds a rich_text property with a single text segment.
func Text(v string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		Type: notionapi.PropertyTypeRichText,
		RichText: []notionapi.RichText{
			{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: v}},
		},
	}
}

// URL builds a url property.
func URL(v string) notionapi.URLProperty {
	return notionapi.URLProperty{
		Type: notionapi.PropertyTypeURL,
		URL:  v,
	}
}

// Number builds a number property.
func Number(v float64) notionapi.NumberProperty {
	return notionapi.NumberProperty{
		Type:   notionapi.PropertyTypeNumber,
		Number: v,
	}
}

// Select builds a select property. An empty name yields an empty select,
// which Notion treats as clearing the value.
func Select(name string) notionapi.SelectProperty {
	p := notionapi.SelectProperty{Type: notionapi.PropertyTypeSelect}
	if name != "" {
		p.Select = notionapi.Option{Name: name}
	}
	return p
}

// Date builds a date property from a single timestamp.
func Date(t time.Time) notionapi.DateProperty {
	d := notionapi.Date(t)
	return notionapi.DateProperty{
		Type: notionapi.PropertyTypeDate,
		Date: &notionapi.DateObject{Start: &d},
	}
}

// TitleValue extracts the concatenated plain text of a title property.
func TitleValue(props notionapi.Properties, name string) string {
	p, ok := props[name].(*notionapi.TitleProperty)
	if !ok {
		return ""
	}
	return joinRichText(p.Title)
}

// TextValue extracts the concatenated plain text of a rich_text property.
func TextValue(props notionapi.Properties, name string) string {
	p, ok := props[name].(*notionapi.RichTextProperty)
	if !ok {
		return ""
	}
	return joinRichText(p.RichText)
}

// URLValue extracts a url property value.
func URLValue(props notionapi.Properties, name string) string {
	p, ok := props[name].(*notionapi.URLProperty)
	if !ok {
		return ""
	}
	return p.URL
}

// NumberValue extracts a number property value.
func NumberValue(props notionapi.Properties, name string) float64 {
	p, ok := props[name].(*notionapi.NumberProperty)
	if !ok {
		return 0
	}
	return p.Number
}

// SelectValue extracts the selected option name of a select property.
func SelectValue(props notionapi.Properties, name string) string {
	p, ok := props[name].(*notionapi.SelectProperty)
	if !ok {
		return ""
	}
	return p.Select.Name
}

// DateValue extracts the start timestamp of a date property, or nil.
func DateValue(props notionapi.Properties, name string) *time.Time {
	p, ok := props[name].(*notionapi.DateProperty)
	if !ok || p.Date == nil || p.Date.Start == nil {
		return nil
	}
	t := time.Time(*p.Date.Start)
	return &t
}

func joinRichText(parts []notionapi.RichText) string {
	var out string
	for _, rt := range parts {
		out += rt.PlainText
		if rt.PlainText == "" && rt.Text != nil {
			out += rt.Text.Content
		}
	}
	return out
}
