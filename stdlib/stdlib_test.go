package stdlib

import (
	"testing"

	"github.com/Maxkoz777/OJavaTranspiler/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdlib_Names(t *testing.T) {
	assert.Equal(t, []string{"Boolean", "Integer", "MathUtils", "Real"}, Names())
}

func TestStdlib_TreesParse(t *testing.T) {
	trees, err := Trees()
	require.NoError(t, err)
	require.Len(t, trees, 4)

	for _, tree := range trees {
		assert.Equal(t, ast.Library, tree.Designation, tree.Filename)
		assert.NotEmpty(t, tree.ClassName, tree.Filename)
	}
}

func TestStdlib_IsScalar(t *testing.T) {
	assert.True(t, IsScalar("Integer"))
	assert.True(t, IsScalar("Boolean"))
	assert.False(t, IsScalar("MathUtils"))
	assert.False(t, IsScalar("Array[Integer]"))
}
