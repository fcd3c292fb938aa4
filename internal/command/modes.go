package command

import "os"

// Input selects what the child process reads on stdin.
type Input struct {
	file    *os.File
	text    *string
	inherit bool
}

// NoInput leaves stdin unconnected; the child reads from the null device.
func NoInput() Input { return Input{} }

// InheritInput hands the parent's stdin to the child, so a tool that
// prompts (a gpg passphrase, a sudo password) can read from the terminal.
func InheritInput() Input { return Input{inherit: true} }

// FileInput connects stdin to an already-open file.
func FileInput(f *os.File) Input { return Input{file: f} }

// StringInput writes s to the child's stdin after launch, then closes it.
func StringInput(s string) Input { return Input{text: &s} }

type outputKind int

const (
	outputConsole outputKind = iota
	outputIgnore
	outputReturn
	outputFile
)

// Output selects where one of stdout/stderr goes. The zero value passes the
// stream through to the console.
type Output struct {
	kind outputKind
	file *os.File
}

// Ignore captures the stream without returning it. The bytes are only
// surfaced through *Error when the command fails.
func Ignore() Output { return Output{kind: outputIgnore} }

// Return captures the stream and returns it on success.
func Return() Output { return Output{kind: outputReturn} }

// Console passes the stream through to the parent's console.
func Console() Output { return Output{kind: outputConsole} }

// ToFile connects the stream to an already-open file.
func ToFile(f *os.File) Output { return Output{kind: outputFile, file: f} }

func (o Output) captured() bool { return o.kind == outputIgnore || o.kind == outputReturn }

func (o Output) returned() bool { return o.kind == outputReturn }

func (o Output) String() string {
	switch o.kind {
	case outputIgnore:
		return "ignore"
	case outputReturn:
		return "return"
	case outputFile:
		return "file"
	default:
		return "console"
	}
}
