package ime

import (
	"strings"

	"github.com/godbus/dbus/v5"

	"goanthy/internal/config"
)

// IBus serializes its objects as variants holding a struct whose first two
// fields are the type name and an attachment dictionary.

type ibusText struct {
	Name        string
	Attachments map[string]dbus.Variant
	Text        string
	Attrs       dbus.Variant
}

type ibusAttrList struct {
	Name        string
	Attachments map[string]dbus.Variant
	Attrs       []dbus.Variant
}

type ibusAttribute struct {
	Name        string
	Attachments map[string]dbus.Variant
	Type        uint32
	Value       uint32
	Start       uint32
	End         uint32
}

type ibusLookupTable struct {
	Name          string
	Attachments   map[string]dbus.Variant
	PageSize      uint32
	CursorPos     uint32
	CursorVisible bool
	Round         bool
	Orientation   int32
	Candidates    []dbus.Variant
	Labels        []dbus.Variant
}

type ibusProperty struct {
	Name        string
	Attachments map[string]dbus.Variant
	Key         string
	Type        uint32
	Label       dbus.Variant
	Icon        string
	Tooltip     dbus.Variant
	Sensitive   bool
	Visible     bool
	State       uint32
	Sub         dbus.Variant
	Symbol      dbus.Variant
}

type ibusPropList struct {
	Name        string
	Attachments map[string]dbus.Variant
	Props       []dbus.Variant
}

// Orientation of the candidate window; system lets the panel decide.
const orientationSystem int32 = 2

func attachments() map[string]dbus.Variant { return map[string]dbus.Variant{} }

func attrListVariant(attrs []Attribute) dbus.Variant {
	list := ibusAttrList{Name: "IBusAttrList", Attachments: attachments(), Attrs: []dbus.Variant{}}
	for _, a := range attrs {
		list.Attrs = append(list.Attrs, dbus.MakeVariant(ibusAttribute{
			Name:        "IBusAttribute",
			Attachments: attachments(),
			Type:        uint32(a.Type),
			Value:       a.Value,
			Start:       a.Start,
			End:         a.End,
		}))
	}
	return dbus.MakeVariant(list)
}

// textVariant encodes an IBusText.
func textVariant(text string, attrs []Attribute) dbus.Variant {
	return dbus.MakeVariant(ibusText{
		Name:        "IBusText",
		Attachments: attachments(),
		Text:        text,
		Attrs:       attrListVariant(attrs),
	})
}

// lookupTableVariant encodes an IBusLookupTable. The cursor is an index
// into the whole candidate list.
func lookupTableVariant(t LookupTable) dbus.Variant {
	table := ibusLookupTable{
		Name:          "IBusLookupTable",
		Attachments:   attachments(),
		PageSize:      uint32(max(t.PageSize, 1)),
		CursorPos:     uint32(max(t.Cursor, 0)),
		CursorVisible: t.CursorVisible,
		Orientation:   orientationSystem,
		Candidates:    make([]dbus.Variant, 0, len(t.Candidates)),
		Labels:        []dbus.Variant{},
	}
	for _, c := range t.Candidates {
		table.Candidates = append(table.Candidates, textVariant(c, nil))
	}
	return dbus.MakeVariant(table)
}

func encodeProperty(p Property) ibusProperty {
	return ibusProperty{
		Name:        "IBusProperty",
		Attachments: attachments(),
		Key:         p.Key,
		Type:        uint32(p.Type),
		Label:       textVariant(p.Label, nil),
		Tooltip:     textVariant(p.Tooltip, nil),
		Sensitive:   true,
		Visible:     p.Visible,
		State:       uint32(p.State),
		Sub:         propListVariant(p.Sub),
		Symbol:      textVariant(p.Label, nil),
	}
}

func propertyVariant(p Property) dbus.Variant {
	return dbus.MakeVariant(encodeProperty(p))
}

func propListVariant(props []Property) dbus.Variant {
	list := ibusPropList{Name: "IBusPropList", Attachments: attachments(), Props: []dbus.Variant{}}
	for _, p := range props {
		list.Props = append(list.Props, propertyVariant(p))
	}
	return dbus.MakeVariant(list)
}

// configChange converts an IBus config notification into a preference
// change. Sections look like "engine/<engine>/common"; only sections of
// engine are accepted.
func configChange(engine, section, name string, value dbus.Variant) (config.Change, bool) {
	sec, ok := strings.CutPrefix(section, "engine/"+engine+"/")
	if !ok || sec == "" || name == "" {
		return config.Change{}, false
	}
	ch := config.Change{Section: sec, Key: strings.ReplaceAll(name, "-", "_")}
	switch v := value.Value().(type) {
	case string, bool, int32, int64, uint32, []string:
		ch.Value = v
	case []dbus.Variant:
		names := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.Value().(string)
			if !ok {
				return config.Change{}, false
			}
			names = append(names, s)
		}
		ch.Value = names
	default:
		return config.Change{}, false
	}
	return ch, true
}

// decodeText extracts the string of an IBusText variant.
func decodeText(v dbus.Variant) string {
	switch t := v.Value().(type) {
	case ibusText:
		return t.Text
	case []any:
		if len(t) >= 3 {
			if s, ok := t[2].(string); ok {
				return s
			}
		}
	case string:
		return t
	}
	return ""
}
