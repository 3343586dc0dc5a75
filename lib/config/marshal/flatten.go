package marshal

import (
	"fmt"
	"sort"
	"strings"
)

// Flatten turns a decoded configuration file into a map of strings, suitable to
// set flag values.
//
// Scalars are rendered with fmt. Lists are joined with commas. Nested tables are
// not supported, and cause an error listing the offending keys.
func Flatten(decoded map[string]interface{}) (map[string]string, error) {
	result := map[string]string{}
	var nested []string
	for key, value := range decoded {
		switch v := value.(type) {
		case nil:
			continue
		case map[string]interface{}, map[interface{}]interface{}:
			nested = append(nested, key)
		case []interface{}:
			values := make([]string, 0, len(v))
			for _, el := range v {
				values = append(values, fmt.Sprint(el))
			}
			result[key] = strings.Join(values, ",")
		default:
			result[key] = fmt.Sprint(v)
		}
	}

	if len(nested) > 0 {
		sort.Strings(nested)
		return nil, fmt.Errorf("nested tables are not supported in configuration files - found %v", nested)
	}
	return result, nil
}

// UnmarshalFlags reads a configuration file in any of the known formats, and
// returns its keys as a flat map of strings.
func UnmarshalFlags(path string) (map[string]string, error) {
	decoded := map[string]interface{}{}
	if err := UnmarshalFile(path, &decoded); err != nil {
		return nil, err
	}
	return Flatten(decoded)
}

// UnmarshalFlagsPrefix is like UnmarshalFlags, but tries prefix with each of
// the known extensions, in preference order.
//
// Returns the path of the file that was read.
func UnmarshalFlagsPrefix(prefix string) (string, map[string]string, error) {
	decoded := map[string]interface{}{}
	path, err := UnmarshalFilePrefix(prefix, &decoded)
	if err != nil {
		return path, nil, err
	}
	flat, err := Flatten(decoded)
	if err != nil {
		return path, nil, fmt.Errorf("%s: %w", path, err)
	}
	return path, flat, nil
}
