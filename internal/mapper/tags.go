package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// tagsToJSON serializes a tag list for the jsonb column. A nil slice becomes
// an empty array rather than SQL NULL so queries can index into it safely.
func tagsToJSON(tags []string) datatypes.JSON {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(raw)
}

func tagsFromJSON(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return []string{}
	}
	return tags
}
