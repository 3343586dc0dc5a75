package marshal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/enfabrica/kunzip/lib/multierror"
)

// Use marshal.Toml to encode/decode from Toml format.
var Toml = &TomlEncoder{}

// Use marshal.Yaml to encode/decode from Yaml format.
var Yaml = &YamlEncoder{}

// Use marshal.Json to encode/decode from Json format.
var Json = &JsonEncoder{}

// Set of known encoders/decoders, in preference order.
var Known = []FileMarshaller{
	Toml, Yaml, Json,
}

// Represents a sorted list of marshallers. Lowest index is the most preferred marshaller.
type FileMarshallers []FileMarshaller

// ByExtension returns the first FileMarshaller based on the extension of the path provided.
func (fm FileMarshallers) ByExtension(path string) FileMarshaller {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil
	}
	return fm.ByFormat(strings.ToLower(ext))
}

// Formats returns the preferred extension of each marshaller.
func (fm FileMarshallers) Formats() []string {
	result := []string{}
	for _, candidate := range fm {
		result = append(result, candidate.Extensions()[0])
	}
	return result
}

// ByFormat returns the first FileMarshaller handling the format specified.
// Format is generally a lowercase string like "json", "yaml", ...
func (fm FileMarshallers) ByFormat(format string) FileMarshaller {
	for _, candidate := range fm {
		for _, ext := range candidate.Extensions() {
			if ext == format {
				return candidate
			}
		}
	}
	return nil
}

// Marshal will marshal the specified value based on the extension of the specified path.
// If the extension is unknown, an error is returned.
func (fm FileMarshallers) Marshal(path string, value interface{}) ([]byte, error) {
	marshaller := fm.ByExtension(path)
	if marshaller == nil {
		return nil, fmt.Errorf("could not determine format from path %s - unknown extension? known: %v", path, fm.Formats())
	}
	return marshaller.Marshal(value)
}

// Unmarshal will determine the format of the file based on the extension, and unmarshal it in value.
//
// value is a pointer to the object to be parsed.
// If the extension is unknown, an error is returned.
func (fm FileMarshallers) Unmarshal(path string, data []byte, value interface{}) error {
	marshaller := fm.ByExtension(path)
	if marshaller == nil {
		return fmt.Errorf("could not determine format from path %s - unknown extension? known: %v", path, fm.Formats())
	}
	return marshaller.Unmarshal(data, value)
}

// UnmarshalFilePrefix will attempt each FileMarshaller extension in order, and open the first that succeeds.
//
// Returns the full path of the file that succeeded, or error.
func (fm FileMarshallers) UnmarshalFilePrefix(prefix string, value interface{}) (string, error) {
	var errs []error
	for _, candidate := range fm {
		for _, ext := range candidate.Extensions() {
			name := prefix + "." + ext

			data, err := os.ReadFile(name)
			if err != nil {
				errs = append(errs, fmt.Errorf("opening %s: %w", name, err))
				continue
			}
			if err := candidate.Unmarshal(data, value); err != nil {
				return name, fmt.Errorf("parsing %s: %w", name, err)
			}
			return name, nil
		}
	}
	return "", multierror.New(errs)
}

// MarshalFile invokes Marshal() to then save the content in a file.
func (fm FileMarshallers) MarshalFile(path string, value interface{}) error {
	data, err := fm.Marshal(path, value)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0660)
}

// UnmarshalFile invokes Unmarshal() to parse the content of a file.
func (fm FileMarshallers) UnmarshalFile(path string, value interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := fm.Unmarshal(path, data, value); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// Marshal will encode the 'value' object using the best encoder depending on the 'path' extension.
func Marshal(path string, value interface{}) ([]byte, error) {
	return FileMarshallers(Known).Marshal(path, value)
}

// Unmarshal will decode the 'data' into the 'value' object based on the 'path' extension.
// value must be a pointer to the desired type.
func Unmarshal(path string, data []byte, value interface{}) error {
	return FileMarshallers(Known).Unmarshal(path, data, value)
}

// MarshalFile is the same as FileMarshallers.MarshalFile, but uses the default list of Marshallers.
func MarshalFile(path string, value interface{}) error {
	return FileMarshallers(Known).MarshalFile(path, value)
}

// UnmarshalFile is the same as FileMarshallers.UnmarshalFile, but uses the default list of Marshallers.
func UnmarshalFile(path string, value interface{}) error {
	return FileMarshallers(Known).UnmarshalFile(path, value)
}

// UnmarshalFilePrefix is the same as FileMarshallers.UnmarshalFilePrefix, but uses the default list of Marshallers.
func UnmarshalFilePrefix(prefix string, value interface{}) (string, error) {
	return FileMarshallers(Known).UnmarshalFilePrefix(prefix, value)
}

// Formats is the same as FileMarshallers.Formats, but uses the default list of Marshallers.
func Formats() []string {
	return FileMarshallers(Known).Formats()
}
