package codec

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/taskgraph/internal/core/task"
)

func encodeYAML(doc Document) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return data, nil
}

func decodeYAML(data []byte) ([]task.Input, error) {
	var doc importDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse yaml: %v", task.ErrFormat, err)
	}
	return inputs(doc.Tasks)
}
