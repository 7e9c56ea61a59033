package kana

import "strings"

// romajiRules is a romaji to hiragana transliteration table, one rule per
// line.
const romajiRules = `
a あ
i い
u う
e え
o お
ka か
ki き
ku く
ke け
ko こ
ga が
gi ぎ
gu ぐ
ge げ
go ご
sa さ
si し
shi し
su す
se せ
so そ
za ざ
zi じ
ji じ
zu ず
ze ぜ
zo ぞ
ta た
ti ち
chi ち
tu つ
tsu つ
te て
to と
da だ
di ぢ
du づ
de で
do ど
na な
ni に
nu ぬ
ne ね
no の
ha は
hi ひ
hu ふ
fu ふ
he へ
ho ほ
ba ば
bi び
bu ぶ
be べ
bo ぼ
pa ぱ
pi ぴ
pu ぷ
pe ぺ
po ぽ
ma ま
mi み
mu む
me め
mo も
ya や
yu ゆ
ye いぇ
yo よ
ra ら
ri り
ru る
re れ
ro ろ
la ら
li り
lu る
le れ
lo ろ
wa わ
wi うぃ
we うぇ
wo を
nn ん
n' ん
xn ん
va ゔぁ
vi ゔぃ
vu ゔ
ve ゔぇ
vo ゔぉ
fa ふぁ
fi ふぃ
fe ふぇ
fo ふぉ
kya きゃ
kyu きゅ
kyo きょ
gya ぎゃ
gyu ぎゅ
gyo ぎょ
sya しゃ
syu しゅ
syo しょ
sha しゃ
shu しゅ
she しぇ
sho しょ
ja じゃ
ju じゅ
je じぇ
jo じょ
jya じゃ
jyu じゅ
jyo じょ
zya じゃ
zyu じゅ
zyo じょ
tya ちゃ
tyu ちゅ
tyo ちょ
cha ちゃ
chu ちゅ
che ちぇ
cho ちょ
tha てゃ
thi てぃ
thu てゅ
dha でゃ
dhi でぃ
dhu でゅ
twu とぅ
dwu どぅ
nya にゃ
nyu にゅ
nyo にょ
hya ひゃ
hyu ひゅ
hyo ひょ
bya びゃ
byu びゅ
byo びょ
pya ぴゃ
pyu ぴゅ
pyo ぴょ
mya みゃ
myu みゅ
myo みょ
rya りゃ
ryu りゅ
ryo りょ
xa ぁ
xi ぃ
xu ぅ
xe ぇ
xo ぉ
xya ゃ
xyu ゅ
xyo ょ
xtu っ
xtsu っ
xwa ゎ
xka ゕ
xke ゖ
ltu っ
lya ゃ
lyu ゅ
lyo ょ
- ー
, 、
. 。
[ 「
] 」
/ ・
~ 〜
z/ ・
z. …
z, ‥
z- 〜
zh ←
zj ↓
zk ↑
zl →
z[ 『
z] 』
`

// kanaKeys maps JIS kana-layout keys to hiragana.
const kanaKeys = `
1 ぬ
2 ふ
3 あ
4 う
5 え
6 お
7 や
8 ゆ
9 よ
0 わ
- ほ
^ へ
q た
w て
e い
r す
t か
y ん
u な
i に
o ら
p せ
@ ゛
[ ゜
a ち
s と
d し
f は
g き
h く
j ま
k の
l り
; れ
: け
] む
z つ
x さ
c そ
v ひ
b こ
n み
m も
, ね
. る
/ め
\ ろ
¥ ー
| ー
# ぁ
$ ぅ
% ぇ
& ぉ
' ゃ
( ゅ
) ょ
~ を
E ぃ
Z っ
< 、
> 。
? ・
{ 「
} 」
`

var (
	romaji       = parseRules(romajiRules)
	romajiPrefix = prefixes(romaji)
	kanaTable    = parseRules(kanaKeys)
)

func parseRules(src string) map[string]string {
	m := make(map[string]string)
	for _, line := range strings.Split(src, "\n") {
		from, to, ok := strings.Cut(strings.TrimSpace(line), " ")
		if !ok {
			continue
		}
		m[from] = to
	}
	return m
}

// prefixes returns every proper prefix of the table keys.
func prefixes(m map[string]string) map[string]bool {
	p := make(map[string]bool)
	for k := range m {
		for i := 1; i < len(k); i++ {
			p[k[:i]] = true
		}
	}
	return p
}
