package ime

import (
	"goanthy/internal/convert"
	"goanthy/internal/kana"
	"goanthy/internal/keybind"
)

// properties builds the panel menu for the current modes.
func (s *Session) properties() []Property {
	props := []Property{
		modeMenu(InputModeProp, "Input mode", inputModes[:], int(s.input)),
		modeMenu(TypingModeProp, "Typing method", typingModes[:], int(s.typing)),
		modeMenu(SegmentModeProp, "Segment mode", segmentModes[:], int(s.conv.SegmentMode())),
	}
	if _, ok := s.backend.(personalities); ok {
		props = append(props, s.dictProperty())
	}
	return append(props,
		Property{Key: DictAdminProp, Type: PropNormal, Label: "Dictionary tool", Visible: s.launcher != nil},
		Property{Key: AddWordProp, Type: PropNormal, Label: "Add word", Visible: s.launcher != nil},
		Property{Key: SetupProp, Type: PropNormal, Label: "Preferences", Visible: s.launcher != nil},
	)
}

func modeMenu(prefix, tooltip string, table []modeInfo, current int) Property {
	menu := Property{
		Key:     prefix,
		Type:    PropMenu,
		Label:   table[current].label,
		Tooltip: tooltip,
		Visible: true,
	}
	for i, info := range table {
		state := PropUnchecked
		if i == current {
			state = PropChecked
		}
		menu.Sub = append(menu.Sub, Property{
			Key:     propName(prefix, info),
			Type:    PropRadio,
			Label:   info.title,
			State:   state,
			Visible: true,
		})
	}
	return menu
}

func (s *Session) dictProperty() Property {
	label := ""
	if p, ok := s.backend.(personalities); ok {
		label = p.Personality()
	}
	return Property{
		Key:     DictModeProp,
		Type:    PropNormal,
		Label:   label,
		Tooltip: "Dictionary",
		Visible: true,
	}
}

// updateModeProperty pushes the new label of a mode menu and the state of
// its entries.
func (s *Session) updateModeProperty(prefix string, table []modeInfo, current int) {
	menu := modeMenu(prefix, "", table, current)
	for _, sub := range menu.Sub {
		s.host.UpdateProperty(sub)
	}
	menu.Sub = nil
	s.host.UpdateProperty(menu)
}

// PropertyActivate handles a panel menu click.
func (s *Session) PropertyActivate(name string, state PropState) {
	s.guard("property_activate", func() bool {
		switch name {
		case DictModeProp:
			return s.run(keybind.CircleDictMethod)
		case DictAdminProp:
			return s.launchCmd(keybind.DictAdmin)()
		case AddWordProp:
			return s.launchCmd(keybind.AddWord)()
		case SetupProp:
			return s.launchCmd(keybind.StartSetup)()
		}
		if state != PropChecked {
			return false
		}
		if i, ok := parseProp(name, InputModeProp, inputModes[:]); ok {
			if InputMode(i) != s.input {
				s.setInputMode(InputMode(i))
			}
			return true
		}
		if i, ok := parseProp(name, TypingModeProp, typingModes[:]); ok {
			if m := kana.TypingMode(i); m != s.typing {
				s.setTypingMode(m)
			}
			return true
		}
		if i, ok := parseProp(name, SegmentModeProp, segmentModes[:]); ok {
			if m := convert.SegmentMode(i); m != s.conv.SegmentMode() {
				s.setSegmentMode(m)
			}
			return true
		}
		s.log.Debug("unknown property", "property", name)
		return false
	})
}
