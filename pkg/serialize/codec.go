package serialize

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/oneconcern/strata/pkg/serialize/status"
	"gopkg.in/yaml.v2"
)

// Format of serialized documents
type Format string

// Supported formats
const (
	JSON Format = "json"
	YAML Format = "yaml"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ParseFormat parses the name of a format. An empty name means YAML.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case JSON:
		return JSON, nil
	case YAML, "yml", "":
		return YAML, nil
	default:
		return "", status.ErrUnknownFormat.WrapMessage(s)
	}
}

// Marshal a document
func Marshal(format Format, doc interface{}) ([]byte, error) {
	switch format {
	case JSON:
		return json.Marshal(doc)
	case YAML:
		return yaml.Marshal(doc)
	default:
		return nil, status.ErrUnknownFormat.WrapMessage(string(format))
	}
}

// Unmarshal a document
func Unmarshal(format Format, data []byte, doc interface{}) error {
	switch format {
	case JSON:
		return json.Unmarshal(data, doc)
	case YAML:
		return yaml.UnmarshalStrict(data, doc)
	default:
		return status.ErrUnknownFormat.WrapMessage(string(format))
	}
}
