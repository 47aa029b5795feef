package sqlq

import (
	"strconv"
)

const (
	ordinalParamPrefix = '$'
	quoteDouble        = '"'
)

var (
	charsetSpace      = new(charset).addStr(" \t\v")
	charsetNewline    = new(charset).addStr("\r\n")
	charsetWhitespace = new(charset).addSet(charsetSpace).addSet(charsetNewline)
	charsetDelimStart = new(charset).addSet(charsetWhitespace).addStr(`([{.`)
	charsetDelimEnd   = new(charset).addSet(charsetWhitespace).addStr(`,}])`)
)

type charset [256]bool

func (self *charset) has(val byte) bool { return self[val] }

func (self *charset) addStr(vals string) *charset {
	for _, val := range vals {
		self[val] = true
	}
	return self
}

func (self *charset) addSet(vals *charset) *charset {
	for ind, val := range vals {
		if val {
			self[ind] = true
		}
	}
	return self
}

/*
Prealloc tool. Makes a `Bui` with the specified capacity of the text and args
buffers.
*/
func MakeBui(textCap, argsCap int) Bui {
	return Bui{
		Text: make([]byte, 0, textCap),
		Args: make([]any, 0, argsCap),
	}
}

/*
Short for "builder". Accumulates SQL text and arguments, automatically
delimiting words with spaces and numbering ordinal parameters. The number of
each new parameter is `.Offset` plus the amount of args appended so far, which
allows a fragment built separately to continue numbering where another
fragment ends.
*/
type Bui struct {
	Text   []byte
	Args   []any
	Offset int
}

// Returns the accumulated text and args as a `Compiled`.
func (self Bui) Compiled() Compiled {
	return Compiled{Text: self.String(), Args: self.Args}
}

// Returns inner text as a string.
func (self Bui) String() string { return string(self.Text) }

// Number of the next ordinal parameter.
func (self Bui) Next() int { return self.Offset + len(self.Args) + 1 }

// Adds a space if the preceding text doesn't already end with a terminator.
func (self *Bui) Space() {
	self.Text = maybeAppendSpace(self.Text)
}

// Appends the provided string, delimiting it from the previous text with a
// space if necessary.
func (self *Bui) Str(val string) {
	self.Text = appendMaybeSpaced(self.Text, val)
}

/*
Appends an identifier. When `quote` is true, the identifier is wrapped in
double quotes. Identifiers are trusted: embedded quotes are not escaped. The
special identifier "*" is never quoted.
*/
func (self *Bui) Ident(val string, quote bool) {
	self.Space()
	if quote && val != `*` {
		self.Text = append(self.Text, quoteDouble)
		self.Text = append(self.Text, val...)
		self.Text = append(self.Text, quoteDouble)
		return
	}
	self.Text = append(self.Text, val...)
}

// Appends comma-separated identifiers.
func (self *Bui) Idents(vals []string, quote bool) {
	for ind, val := range vals {
		if ind > 0 {
			self.Str(`,`)
		}
		self.Ident(val, quote)
	}
}

// Appends an integer literal. Used for "limit" and "offset".
func (self *Bui) Int(val int64) {
	self.Space()
	self.Text = strconv.AppendInt(self.Text, val, 10)
}

/*
Appends an argument to `.Args` and a corresponding ordinal parameter such as
"$1" to `.Text`.
*/
func (self *Bui) Arg(val any) {
	self.Space()
	self.Text = append(self.Text, ordinalParamPrefix)
	self.Text = strconv.AppendInt(self.Text, int64(self.Next()), 10)
	self.Args = append(self.Args, val)
}

// Appends another compiled fragment. The fragment must have been built with a
// matching offset, so its parameters are appended without renumbering.
func (self *Bui) Fragment(val Compiled) {
	if val.Text != `` {
		self.Str(val.Text)
	}
	self.Args = append(self.Args, val.Args...)
}

func maybeAppendSpace(val []byte) []byte {
	if hasDelimSuffix(val) {
		return val
	}
	return append(val, ` `...)
}

func appendMaybeSpaced(text []byte, suffix string) []byte {
	if !hasDelimSuffix(text) && !hasDelimPrefix(suffix) {
		text = append(text, ` `...)
	}
	text = append(text, suffix...)
	return text
}

func hasDelimPrefix(text string) bool {
	return len(text) == 0 || charsetDelimEnd.has(text[0])
}

func hasDelimSuffix(text []byte) bool {
	return len(text) == 0 || charsetDelimStart.has(text[len(text)-1])
}
