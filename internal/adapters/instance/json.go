package instance

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"

	"github.com/okian/staffing/internal/domain/model"
	"github.com/okian/staffing/internal/domain/types"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

//go:embed schema.json
var schemaJSON string

var instanceSchema = jsonschema.MustCompileString("instance.schema.json", schemaJSON)

// ReadJSON parses the JSON instance form after validating it against the
// embedded schema. Structural failures such as duplicate names wrap both
// ErrMalformedInput and model.ErrInvalidInstance.
func ReadJSON(data []byte) (*model.Instance, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if err := instanceSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}

	root := gjson.ParseBytes(data)
	in := &model.Instance{}
	root.Get("contributors").ForEach(func(_, v gjson.Result) bool {
		c := model.Contributor{Name: v.Get("name").String(), Skills: map[string]int{}}
		v.Get("skills").ForEach(func(k, l gjson.Result) bool {
			c.Skills[k.String()] = int(l.Int())
			return true
		})
		in.Contributors = append(in.Contributors, c)
		return true
	})
	root.Get("projects").ForEach(func(_, v gjson.Result) bool {
		p := model.Project{
			Name:       v.Get("name").String(),
			Duration:   int(v.Get("duration").Int()),
			Score:      int(v.Get("score").Int()),
			BestBefore: int(v.Get("best_before").Int()),
		}
		v.Get("roles").ForEach(func(_, r gjson.Result) bool {
			p.Roles = append(p.Roles, model.Role{Skill: r.Get("skill").String(), Level: int(r.Get("level").Int())})
			return true
		})
		in.Projects = append(in.Projects, p)
		return true
	})
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return in, nil
}

// WriteJSON writes a plan response as indented JSON.
func WriteJSON(w io.Writer, plan types.PlanResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}
