package bsvprint

// document is the top-level object of a generated module. Field order is the
// order keys appear in the output.
type document struct {
	Module       string          `json:"module"`
	Source       string          `json:"source"`
	Package      string          `json:"package"`
	Syntax       string          `json:"syntax"`
	Imports      []importDecl    `json:"imports"`
	Reexports    []reexportDecl  `json:"reexports"`
	GlobalDecls  []typeDef       `json:"globaldecls"`
	Constants    []constant      `json:"constants"`
	Extensions   []extensionDecl `json:"extensions"`
	Interfaces   []iface         `json:"interfaces"`
	Options      []optionFix     `json:"options"`
	SerializedPb string          `json:"serializedPb,omitempty"`
}

// importDecl either imports a module under an alias (Statement is set) or
// re-binds an alias exported by a previously imported module (From is set).
type importDecl struct {
	Statement string `json:"statement,omitempty"`
	Alias     string `json:"alias"`
	From      string `json:"from,omitempty"`
}

type reexportDecl struct {
	Module    string `json:"module"`
	Statement string `json:"statement"`
}

type typeDef struct {
	DType      string    `json:"dtype"`
	TName      string    `json:"tname"`
	Descriptor string    `json:"descriptor"`
	TDType     any       `json:"tdtype"` // *enumType or *structType
	Options    string    `json:"options"`
	Serialized *interval `json:"serialized,omitempty"`
}

type enumType struct {
	Type     string      `json:"type"`
	Name     string      `json:"name"`
	FullName string      `json:"fullName"`
	Elements []string    `json:"elements"`
	Values   []enumValue `json:"values"`
}

type enumValue struct {
	Name    string `json:"name"`
	Number  int32  `json:"number"`
	Index   int    `json:"index"`
	Options string `json:"options"`
}

// structType describes a message. Elements are the message's own fields, in
// declaration order. Extensions are the extensions declared in the message's
// scope; they extend other messages (named by each record's extendee) and are
// attached to the message as nested extensions, never merged into Elements.
type structType struct {
	Type            string        `json:"type"`
	Name            string        `json:"name"`
	FullName        string        `json:"fullName"`
	Elements        []fieldRecord `json:"elements"`
	Extensions      []fieldRecord `json:"extensions,omitempty"`
	ExtensionRanges [][2]int32    `json:"extensionRanges,omitempty"`
	Oneofs          []oneof       `json:"oneofs,omitempty"`
}

type fieldRecord struct {
	PName       string  `json:"pname"`
	PType       typeRef `json:"ptype"`
	Number      int32   `json:"number"`
	Label       int     `json:"label"`
	HasDefault  bool    `json:"hasDefault"`
	Default     string  `json:"default"`
	IsExtension bool    `json:"isExtension"`
	Extendee    string  `json:"extendee,omitempty"`
	TypeRef     string  `json:"typeRef,omitempty"`
	Options     string  `json:"options"`
}

type typeRef struct {
	Name string `json:"name"`
}

type oneof struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

type interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type constant struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type extensionDecl struct {
	Constant string      `json:"constant"`
	Field    fieldRecord `json:"field"`
}

type iface struct {
	CName      string   `json:"cname"`
	Descriptor string   `json:"descriptor"`
	Options    string   `json:"options"`
	CDecls     []method `json:"cdecls"`
}

type method struct {
	DName   string  `json:"dname"`
	DParams []param `json:"dparams"`
	Options string  `json:"options"`
}

type param struct {
	PName string  `json:"pname"`
	PType typeRef `json:"ptype"`
}

// optionFix assigns lazily parsed options to the descriptor named by Target.
type optionFix struct {
	Target string `json:"target"`
	Value  string `json:"value"`
}
