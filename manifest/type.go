package manifest

// Type identifies the capability a plugin implements. The set is closed:
// a plugin declares exactly one capability and the registry indexes it
// under that capability alone.
type Type string

const (
	TypeProvider             Type = "provider"
	TypeFileParser           Type = "file_parser"
	TypeStorage              Type = "storage"
	TypeDatabase             Type = "database"
	TypeTextVectorizer       Type = "text_vectorizer"
	TypeImageVectorizer      Type = "image_vectorizer"
	TypeMultimodalVectorizer Type = "multimodal_vectorizer"
	TypeReranker             Type = "reranker"
	TypeGenerative           Type = "generative"
	TypeEnhancer             Type = "enhancer"
)

// Types returns all capability types in a stable order.
func Types() []Type {
	return []Type{
		TypeProvider,
		TypeFileParser,
		TypeStorage,
		TypeDatabase,
		TypeTextVectorizer,
		TypeImageVectorizer,
		TypeMultimodalVectorizer,
		TypeReranker,
		TypeGenerative,
		TypeEnhancer,
	}
}

// Valid reports whether t is one of the known capability types.
func (t Type) Valid() bool {
	switch t {
	case TypeProvider, TypeFileParser, TypeStorage, TypeDatabase,
		TypeTextVectorizer, TypeImageVectorizer, TypeMultimodalVectorizer,
		TypeReranker, TypeGenerative, TypeEnhancer:
		return true
	}
	return false
}

func (t Type) String() string {
	return string(t)
}

// Runtime describes how a plugin participates in the host lifecycle.
// Plugins declaring RuntimeService are started and stopped explicitly by
// the registry; all other plugins are invoked purely on demand.
type Runtime string

// RuntimeService marks a plugin as a long-running service.
const RuntimeService Runtime = "service"

// SchemaKind names an optional schema a plugin may declare.
type SchemaKind string

const (
	// SchemaConfig is the schema the resolved plugin configuration must satisfy.
	SchemaConfig SchemaKind = "config"

	// SchemaInput is the schema for the plugin's primary task input.
	SchemaInput SchemaKind = "input"

	// SchemaOutput is the schema for the plugin's primary task output.
	SchemaOutput SchemaKind = "output"
)

// Reserved lifecycle task names. Every plugin module may handle these in
// addition to its capability tasks; modules that do not are treated as
// having no-op lifecycle hooks.
const (
	TaskBootstrap    = "bootstrap"
	TaskDestroy      = "destroy"
	TaskStartService = "startService"
	TaskStopService  = "stopService"
)
