// Package middleschema describes data models in a form that can be rendered
// into OpenAPI-compatible JSON Schema.
//
// The root package only holds the read-only introspection surface consumed by
// the pipeline:
//
//   - Type: a closed variant over the supported semantic categories
//     (primitives, models, enums, lists, sets, string-keyed dicts, unions)
//   - Model, Field and Enum: the interfaces a model framework implements, plus
//     the ModelDef/FieldDef/EnumDef builders for declaring models in code
//   - Validator metadata (Rules, InstanceOf, And) and the tri-state Default
//   - the error taxonomy shared by every stage
//
// The pipeline itself lives in subpackages: skeleton builds the intermediate
// tree, openapi renders it. reflectmodel and modeldef produce models from Go
// structs and YAML documents, and cmd/middleschema wraps everything in a CLI.
//
// Typical usage:
//
//	player := middleschema.NewModel("Player").
//	    Field("nickname", middleschema.String(), middleschema.WithDescription("The nickname")).
//	    Field("youtube_channel", middleschema.String(), middleschema.WithDefault(nil))
//
//	res, err := openapi.Parse(player)
//	// res.Specification == {"$ref": "#/components/schemas/Player"}
//	// res.Components["Player"] holds the object schema
package middleschema
