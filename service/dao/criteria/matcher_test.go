package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/kcore/service/dao"
)

func TestFilterByState(t *testing.T) {
	testCases := []struct {
		description string
		state       string
		parameters  []*dao.Parameter
		expect      bool
	}{
		{description: "no filter", state: "running", expect: true},
		{description: "single match", state: "zombie", parameters: []*dao.Parameter{dao.StateParameter("zombie")}, expect: true},
		{description: "single mismatch", state: "running", parameters: []*dao.Parameter{dao.StateParameter("zombie")}},
		{description: "any of", state: "running", parameters: []*dao.Parameter{dao.StateParameter("zombie", "running")}, expect: true},
		{description: "unrelated parameter", state: "running", parameters: []*dao.Parameter{dao.NewParameter("Image", "init")}, expect: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.Equal(t, testCase.expect, FilterByState(testCase.state, testCase.parameters))
		})
	}
}
