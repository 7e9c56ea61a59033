// Package keybind maps canonical keys to ordered command lists.
package keybind

import (
	"errors"
	"fmt"
)

// ErrUnknownCommand is returned for command names outside the command list.
var ErrUnknownCommand = errors.New("keybind: unknown command")

// Command identifies one engine command. The declaration order below is
// authoritative: commands sharing a key run in this order.
type Command int

const (
	OnOff Command = iota
	CircleInputMode
	CircleKanaMode
	LatinMode
	WideLatinMode
	HiraganaMode
	KatakanaMode
	HalfKatakana
	CircleTypingMethod
	CircleDictMethod
	InsertSpace
	InsertAlternateSpace
	InsertHalfSpace
	InsertWideSpace
	Backspace
	Delete
	Commit
	Convert
	Predict
	Cancel
	CancelAll
	Reconvert
	MoveCaretFirst
	MoveCaretLast
	MoveCaretForward
	MoveCaretBackward
	SelectFirstSegment
	SelectLastSegment
	SelectNextSegment
	SelectPrevSegment
	ShrinkSegment
	ExpandSegment
	CommitFirstSegment
	CommitSelectedSegment
	SelectFirstCandidate
	SelectLastCandidate
	SelectNextCandidate
	SelectPrevCandidate
	CandidatesPageUp
	CandidatesPageDown
	SelectCandidates1
	SelectCandidates2
	SelectCandidates3
	SelectCandidates4
	SelectCandidates5
	SelectCandidates6
	SelectCandidates7
	SelectCandidates8
	SelectCandidates9
	SelectCandidates0
	ConvertToCharTypeForward
	ConvertToCharTypeBackward
	ConvertToHiragana
	ConvertToKatakana
	ConvertToHalf
	ConvertToHalfKatakana
	ConvertToWideLatin
	ConvertToLatin
	DictAdmin
	AddWord
	StartSetup

	// CommandCount is the number of commands.
	CommandCount int = iota
)

var commandNames = [CommandCount]string{
	"on_off",
	"circle_input_mode",
	"circle_kana_mode",
	"latin_mode",
	"wide_latin_mode",
	"hiragana_mode",
	"katakana_mode",
	"half_katakana",
	"circle_typing_method",
	"circle_dict_method",
	"insert_space",
	"insert_alternate_space",
	"insert_half_space",
	"insert_wide_space",
	"backspace",
	"delete",
	"commit",
	"convert",
	"predict",
	"cancel",
	"cancel_all",
	"reconvert",
	"move_caret_first",
	"move_caret_last",
	"move_caret_forward",
	"move_caret_backward",
	"select_first_segment",
	"select_last_segment",
	"select_next_segment",
	"select_prev_segment",
	"shrink_segment",
	"expand_segment",
	"commit_first_segment",
	"commit_selected_segment",
	"select_first_candidate",
	"select_last_candidate",
	"select_next_candidate",
	"select_prev_candidate",
	"candidates_page_up",
	"candidates_page_down",
	"select_candidates_1",
	"select_candidates_2",
	"select_candidates_3",
	"select_candidates_4",
	"select_candidates_5",
	"select_candidates_6",
	"select_candidates_7",
	"select_candidates_8",
	"select_candidates_9",
	"select_candidates_0",
	"convert_to_char_type_forward",
	"convert_to_char_type_backward",
	"convert_to_hiragana",
	"convert_to_katakana",
	"convert_to_half",
	"convert_to_half_katakana",
	"convert_to_wide_latin",
	"convert_to_latin",
	"dict_admin",
	"add_word",
	"start_setup",
}

var commandsByName = func() map[string]Command {
	m := make(map[string]Command, CommandCount)
	for i, name := range commandNames {
		m[name] = Command(i)
	}
	return m
}()

func (c Command) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Command(%d)", int(c))
	}
	return commandNames[c]
}

// Valid reports whether c is a declared command.
func (c Command) Valid() bool {
	return c >= 0 && int(c) < CommandCount
}

// ParseCommand resolves a configuration command name.
func ParseCommand(name string) (Command, error) {
	c, ok := commandsByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return c, nil
}

// Commands returns every command in declaration order.
func Commands() []Command {
	out := make([]Command, CommandCount)
	for i := range out {
		out[i] = Command(i)
	}
	return out
}

// CandidateDigit returns the page index selected by a select_candidates_N
// command and whether c is one.
func (c Command) CandidateDigit() (int, bool) {
	if c < SelectCandidates1 || c > SelectCandidates0 {
		return 0, false
	}
	return int(c - SelectCandidates1), true
}
