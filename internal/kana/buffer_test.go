package kana

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func typeString(b *Buffer, s string) {
	for _, r := range s {
		b.Insert(r)
	}
}

func TestRomaji(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"nihongo", "にほんご"},
		{"kyouto", "きょうと"},
		{"gakkou", "がっこう"},
		{"shinnbunn", "しんぶん"},
		{"konnnichiha", "こんにちは"},
		{"tsukue", "つくえ"},
		{"ro-ma", "ろーま"},
		{"ka,", "か、"},
		{"123", "１２３"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			b := NewBuffer(Romaji)
			typeString(b, tt.input)
			got, cursor := b.Render(Hiragana, true)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len([]rune(tt.want)), cursor)
		})
	}
}

func TestPendingRomaji(t *testing.T) {
	b := NewBuffer(Romaji)
	typeString(b, "kan")

	got, _ := b.Render(Hiragana, false)
	assert.Equal(t, "かn", got)

	got, _ = b.Render(Hiragana, true)
	assert.Equal(t, "かん", got)

	b.RemoveBefore()
	got, _ = b.Render(Hiragana, true)
	assert.Equal(t, "か", got)
}

func TestForms(t *testing.T) {
	b := NewBuffer(Romaji)
	typeString(b, "Gakkou")

	tests := []struct {
		form Form
		want string
	}{
		{Hiragana, "がっこう"},
		{Katakana, "ガッコウ"},
		{HalfKatakana, "ｶﾞｯｺｳ"},
		{Latin, "Gakkou"},
		{WideLatin, "Ｇａｋｋｏｕ"},
	}
	for _, tt := range tests {
		t.Run(tt.form.String(), func(t *testing.T) {
			got, _ := b.Render(tt.form, true)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCursorEditing(t *testing.T) {
	b := NewBuffer(Romaji)
	typeString(b, "aiu")

	b.MoveCursor(-1)
	got, cursor := b.Render(Hiragana, true)
	assert.Equal(t, "あいう", got)
	assert.Equal(t, 2, cursor)

	b.Insert('e')
	got, cursor = b.Render(Hiragana, true)
	assert.Equal(t, "あいえう", got)
	assert.Equal(t, 3, cursor)

	b.RemoveAfter()
	got, _ = b.Render(Hiragana, true)
	assert.Equal(t, "あいえ", got)

	b.MoveCursor(-10)
	assert.Equal(t, 0, b.Cursor())
	b.RemoveBefore()
	assert.Equal(t, 3, b.Len())

	b.MoveCursor(10)
	assert.Equal(t, 3, b.Cursor())
}

func TestKanaTyping(t *testing.T) {
	b := NewBuffer(Kana)
	typeString(b, "t@")
	got, _ := b.Render(Hiragana, true)
	assert.Equal(t, "が", got)

	b.Insert('3')
	b.Insert('@')
	got, _ = b.Render(Hiragana, true)
	assert.Equal(t, "があ゛", got)
}

func TestInsertKana(t *testing.T) {
	b := NewBuffer(ThumbShift)
	b.InsertKana("か")
	b.InsertKana("゛")
	b.InsertKana("ぱ")
	got, _ := b.Render(Hiragana, true)
	assert.Equal(t, "がぱ", got)
}

func TestRawAndDropPrefix(t *testing.T) {
	b := NewBuffer(Romaji)
	typeString(b, "watashiha")

	assert.Equal(t, "watashi", b.Raw(0, 3))
	assert.Equal(t, "ha", b.Raw(3, 4))

	b.DropPrefix(3)
	got, cursor := b.Render(Hiragana, true)
	assert.Equal(t, "は", got)
	assert.Equal(t, 1, cursor)
}

func TestSplitInsideUnit(t *testing.T) {
	b := NewBuffer(Romaji)
	typeString(b, "kyaku")

	assert.Equal(t, "ky", b.Raw(0, 1))
	assert.Equal(t, "aku", b.Raw(1, 3))
	assert.Equal(t, "kyaku", b.Raw(0, 3))
	got, _ := b.Render(Hiragana, true)
	assert.Equal(t, "きゃく", got, "reading the raw text leaves the buffer alone")

	b.DropPrefix(1)
	got, cursor := b.Render(Hiragana, true)
	assert.Equal(t, "ゃく", got)
	assert.Equal(t, 2, cursor)
	assert.Equal(t, 2, b.Len())
	latin, _ := b.Render(Latin, true)
	assert.Equal(t, "aku", latin)
}

func TestClone(t *testing.T) {
	b := NewBuffer(Romaji)
	typeString(b, "ka")
	c := b.Clone()
	b.Insert('a')

	got, _ := c.Render(Hiragana, true)
	assert.Equal(t, "か", got)
}

func TestConversions(t *testing.T) {
	assert.Equal(t, "カタカナ", ToKatakana("かたかな"))
	assert.Equal(t, "ひらがな", ToHiragana("ヒラガナ"))
	assert.Equal(t, "ﾊﾟｰﾃｨｰ", ToHalfKatakana("ぱーてぃー"))
	assert.Equal(t, "ＡＢＣ　", ToWide("ABC "))
}
