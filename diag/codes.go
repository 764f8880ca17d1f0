package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Declarations
	SemInfo                  Code = 1000
	SemAlreadyDeclared       Code = 1001
	SemDuplicateParameter    Code = 1002
	SemStrictName            Code = 1003
	SemLetAsLexicalName      Code = 1004
	SemUseStrictNonSimple    Code = 1005
	SemUndeclaredVariable    Code = 1006
	SemInvalidAssignTarget   Code = 1007
	SemInvalidUpdateOperand  Code = 1008
	SemForInOfInitializer    Code = 1009
	SemStrictDeleteIdent     Code = 1010
	SemNewTargetOutsideFunc  Code = 1011
	SemYieldOutsideGenerator Code = 1012
	SemAwaitOutsideAsync     Code = 1013
	SemYieldInParameters     Code = 1014
	SemReturnOutsideFunction Code = 1015

	// Labels
	SemLabelRedefined       Code = 1100
	SemLabelUndefined       Code = 1101
	SemBreakOutside         Code = 1102
	SemContinueOutside      Code = 1103
	SemContinueNotLoopLabel Code = 1104

	// Modules
	ModImportOutsideModule Code = 1200
	ModExportOutsideModule Code = 1201
	ModUnresolved          Code = 1202
	ModImportCycle         Code = 1203

	// Input
	IOLoadFile  Code = 1300
	IOBadESTree Code = 1301
)

var codeNames = map[Code]string{
	UnknownCode:              "unknown",
	SemInfo:                  "sema",
	SemAlreadyDeclared:       "already-declared",
	SemDuplicateParameter:    "duplicate-parameter",
	SemStrictName:            "strict-name",
	SemLetAsLexicalName:      "let-as-lexical-name",
	SemUseStrictNonSimple:    "use-strict-non-simple",
	SemUndeclaredVariable:    "undeclared-variable",
	SemInvalidAssignTarget:   "invalid-assign-target",
	SemInvalidUpdateOperand:  "invalid-update-operand",
	SemForInOfInitializer:    "for-in-of-initializer",
	SemStrictDeleteIdent:     "strict-delete-identifier",
	SemNewTargetOutsideFunc:  "new-target-outside-function",
	SemYieldOutsideGenerator: "yield-outside-generator",
	SemAwaitOutsideAsync:     "await-outside-async",
	SemYieldInParameters:     "yield-in-parameters",
	SemReturnOutsideFunction: "return-outside-function",
	SemLabelRedefined:        "label-redefined",
	SemLabelUndefined:        "label-undefined",
	SemBreakOutside:          "break-outside",
	SemContinueOutside:       "continue-outside",
	SemContinueNotLoopLabel:  "continue-not-loop-label",
	ModImportOutsideModule:   "import-outside-module",
	ModExportOutsideModule:   "export-outside-module",
	ModUnresolved:            "unresolved-dependency",
	ModImportCycle:           "import-cycle",
	IOLoadFile:               "load-failed",
	IOBadESTree:              "bad-estree",
}

// ID returns the short code identifier, e.g. "S1001".
func (c Code) ID() string {
	prefix := "S"
	switch {
	case c >= IOLoadFile:
		prefix = "I"
	case c >= ModImportOutsideModule:
		prefix = "M"
	}
	return fmt.Sprintf("%s%04d", prefix, uint16(c))
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return codeNames[UnknownCode]
}
