package ime

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goanthy/internal/config"
)

func TestVariantSignatures(t *testing.T) {
	tests := []struct {
		name string
		v    dbus.Variant
		sig  string
	}{
		{"text", textVariant("日本語", highlight(3, 0, 3)), "(sa{sv}sv)"},
		{"attr list", attrListVariant(nil), "(sa{sv}av)"},
		{"lookup table", lookupTableVariant(LookupTable{Candidates: []string{"a"}}), "(sa{sv}uubbiavav)"},
		{"property", propertyVariant(Property{Key: "k"}), "(sa{sv}suvsvbbuvv)"},
		{"property list", propListVariant(nil), "(sa{sv}av)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.sig, tt.v.Signature().String())
		})
	}
}

func TestTextVariantCarriesAttributes(t *testing.T) {
	v := textVariant("にほんご", highlight(4, 1, 3))
	text, ok := v.Value().(ibusText)
	require.True(t, ok)
	assert.Equal(t, "IBusText", text.Name)
	assert.Equal(t, "にほんご", text.Text)

	list, ok := text.Attrs.Value().(ibusAttrList)
	require.True(t, ok)
	require.Len(t, list.Attrs, 3)
	bg, ok := list.Attrs[1].Value().(ibusAttribute)
	require.True(t, ok)
	assert.Equal(t, uint32(AttrBackground), bg.Type)
	assert.Equal(t, ActiveSegmentColor, bg.Value)
	assert.Equal(t, uint32(1), bg.Start)
	assert.Equal(t, uint32(3), bg.End)
}

func TestLookupTableVariant(t *testing.T) {
	v := lookupTableVariant(LookupTable{Candidates: []string{"日本語", "にほんご"}, PageSize: 0, Cursor: 1, CursorVisible: true})
	table, ok := v.Value().(ibusLookupTable)
	require.True(t, ok)
	assert.Equal(t, uint32(1), table.PageSize, "page size is at least one")
	assert.Equal(t, uint32(1), table.CursorPos)
	assert.Equal(t, orientationSystem, table.Orientation)
	require.Len(t, table.Candidates, 2)
	assert.Equal(t, "にほんご", decodeText(table.Candidates[1]))
}

func TestPropertyVariantNestsSubMenu(t *testing.T) {
	menu := modeMenu(InputModeProp, "Input mode", inputModes[:], int(Katakana))
	p, ok := propertyVariant(menu).Value().(ibusProperty)
	require.True(t, ok)
	assert.Equal(t, InputModeProp, p.Key)
	assert.Equal(t, uint32(PropMenu), p.Type)
	assert.Equal(t, "ア", decodeText(p.Label))

	subs, ok := p.Sub.Value().(ibusPropList)
	require.True(t, ok)
	require.Len(t, subs.Props, int(inputModeCount))
	sub, ok := subs.Props[1].Value().(ibusProperty)
	require.True(t, ok)
	assert.Equal(t, "InputMode.Katakana", sub.Key)
	assert.Equal(t, uint32(PropChecked), sub.State)
}

func TestConfigChange(t *testing.T) {
	tests := []struct {
		name    string
		section string
		key     string
		value   any
		want    config.Change
		ok      bool
	}{
		{
			name: "string", section: "engine/goanthy/common", key: "input-mode", value: "katakana",
			want: config.Change{Section: "common", Key: "input_mode", Value: "katakana"}, ok: true,
		},
		{
			name: "int", section: "engine/goanthy/common", key: "page_size", value: int32(7),
			want: config.Change{Section: "common", Key: "page_size", Value: int32(7)}, ok: true,
		},
		{
			name: "string list", section: "engine/goanthy/shortcut/default", key: "commit", value: []string{"Return"},
			want: config.Change{Section: "shortcut/default", Key: "commit", Value: []string{"Return"}}, ok: true,
		},
		{
			name: "variant list", section: "engine/goanthy/shortcut/default", key: "cancel",
			value: []dbus.Variant{dbus.MakeVariant("Escape")},
			want:  config.Change{Section: "shortcut/default", Key: "cancel", Value: []string{"Escape"}}, ok: true,
		},
		{name: "other engine", section: "engine/anthy/common", key: "input_mode", value: "latin"},
		{name: "bare engine section", section: "engine/goanthy/", key: "input_mode", value: "latin"},
		{name: "unsupported type", section: "engine/goanthy/common", key: "page_size", value: 1.5},
		{
			name: "mixed variant list", section: "engine/goanthy/shortcut/default", key: "cancel",
			value: []dbus.Variant{dbus.MakeVariant("Escape"), dbus.MakeVariant(uint32(1))},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := configChange(EngineName, tt.section, tt.key, dbus.MakeVariant(tt.value))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDecodeText(t *testing.T) {
	wire := dbus.MakeVariant([]any{"IBusText", map[string]dbus.Variant{}, "surrounding", attrListVariant(nil)})
	assert.Equal(t, "surrounding", decodeText(wire))
	assert.Equal(t, "plain", decodeText(dbus.MakeVariant("plain")))
	assert.Equal(t, "local", decodeText(textVariant("local", nil)))
	assert.Equal(t, "", decodeText(dbus.MakeVariant(uint32(3))))
}

func TestComponentXML(t *testing.T) {
	out, err := ComponentXML(PlatformConfig{
		EnginePath: "/usr/libexec/anthy-ibus",
		IconPath:   "/usr/share/icons/goanthy.png",
		Version:    EngineVersion,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), xml.Header))

	var c component
	require.NoError(t, xml.Unmarshal(out, &c))
	assert.Equal(t, BusName, c.Name)
	assert.Equal(t, "/usr/libexec/anthy-ibus -ibus", c.Exec)
	require.Len(t, c.Engines, 1)
	e := c.Engines[0]
	assert.Equal(t, EngineName, e.Name)
	assert.Equal(t, "ja", e.Language)
	assert.Equal(t, "jp", e.Layout)
	assert.Equal(t, "あ", e.Symbol)
	assert.Equal(t, 99, e.Rank)
}

func TestComponentPath(t *testing.T) {
	assert.Equal(t, "/tmp/ibus/component/goanthy.xml", componentPath(PlatformConfig{ComponentDir: "/tmp/ibus/component"}))
}
