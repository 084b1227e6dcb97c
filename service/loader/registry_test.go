package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kcore/runtime/task"
	"github.com/viant/kcore/service/dao"
)

type entry func() int

func TestRegistry(t *testing.T) {
	registry := New[entry]()
	testCases := []struct {
		description string
		program     *Program[entry]
		expectErr   error
	}{
		{description: "default priority", program: &Program[entry]{Name: "hello", Entry: func() int { return 0 }}},
		{description: "explicit priority", program: &Program[entry]{Name: "busy", Entry: func() int { return 1 }, Priority: 4}},
		{description: "priority below minimum", program: &Program[entry]{Name: "bad", Priority: 1}, expectErr: task.ErrInvalidArgument},
		{description: "missing name", program: &Program[entry]{}, expectErr: task.ErrInvalidArgument},
		{description: "nil program", expectErr: task.ErrInvalidArgument},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			err := registry.Register(testCase.program)
			if testCase.expectErr != nil {
				assert.ErrorIs(t, err, testCase.expectErr)
				return
			}
			require.NoError(t, err)
			loaded, err := registry.Load(testCase.program.Name)
			require.NoError(t, err)
			assert.Same(t, testCase.program, loaded)
		})
	}
	assert.Equal(t, []string{"busy", "hello"}, registry.Names())
	_, err := registry.Load("missing")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}
