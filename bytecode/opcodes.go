package bytecode

import "fmt"

type Opcode int32

// Operands follow their opcode inline in Program.Instr.
const (
	Nop Opcode = iota

	// Output
	RawText // RawText idx: write RawTexts[idx]
	Output  // pop a value and write it

	// Lookup chains
	Locally        // start a chain at the local frame
	Obj            // Obj name nargs: pop args, navigate to the named value
	XMLVal         // XMLVal name nargs: pop args, push the named value's markup
	HasValue       // HasValue name nargs: pop args, push whether the named value exists
	Self           // complete the chain, pushing its current item
	LookupOrString // LookupOrString name: push the named value's markup, or name itself

	// Blocks
	Push // make the chain's frame the local frame
	Pop  // end the block begun by Push
	Next // Next target: advance the local iteration, jump to target once exhausted

	// Expressions
	Const            // Const idx: push Values[idx]
	Not              // pop a value, push its negation
	Eq               // pop two values, push whether they are equal
	NotEq            // pop two values, push whether they differ
	Jump             // Jump target
	JumpIfFalse      // JumpIfFalse target: pop a value, jump if it is false
	JumpIfFalseOrPop // JumpIfFalseOrPop target: jump if the top value is false, else pop it
	JumpIfTrueOrPop  // JumpIfTrueOrPop target: jump if the top value is true, else pop it

	// Templates
	Include // Include name nargs argname...: pop args, render the named template
	Return

	EndOpcode
)

var opcodeNames = [...]string{
	Nop:              "Nop",
	RawText:          "RawText",
	Output:           "Output",
	Locally:          "Locally",
	Obj:              "Obj",
	XMLVal:           "XMLVal",
	HasValue:         "HasValue",
	Self:             "Self",
	LookupOrString:   "LookupOrString",
	Push:             "Push",
	Pop:              "Pop",
	Next:             "Next",
	Const:            "Const",
	Not:              "Not",
	Eq:               "Eq",
	NotEq:            "NotEq",
	Jump:             "Jump",
	JumpIfFalse:      "JumpIfFalse",
	JumpIfFalseOrPop: "JumpIfFalseOrPop",
	JumpIfTrueOrPop:  "JumpIfTrueOrPop",
	Include:          "Include",
	Return:           "Return",
}

func (op Opcode) String() string {
	if op >= 0 && op < EndOpcode {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int32(op))
}
