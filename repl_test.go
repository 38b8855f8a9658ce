package main

import (
	"bytes"
	stderrors "errors"
	"io"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	cmd, err := parseCommand(":quit")
	require.NoError(t, err)
	assert.True(t, cmd.Quit)

	cmd, err = parseCommand(":reset")
	require.NoError(t, err)
	assert.True(t, cmd.Reset)

	cmd, err = parseCommand(":tokens")
	require.NoError(t, err)
	assert.True(t, cmd.Tokens)

	cmd, err = parseCommand(":ast")
	require.NoError(t, err)
	assert.True(t, cmd.AST)

	cmd, err = parseCommand(":check")
	require.NoError(t, err)
	assert.True(t, cmd.Check)

	cmd, err = parseCommand(`:load "src/Point.olang"`)
	require.NoError(t, err)
	require.NotNil(t, cmd.Load)
	assert.Equal(t, "src/Point.olang", *cmd.Load)

	cmd, err = parseCommand(":type Point x")
	require.NoError(t, err)
	require.NotNil(t, cmd.Type)
	assert.Equal(t, typeQuery{Class: "Point", Name: "x"}, *cmd.Type)

	_, err = parseCommand(":frobnicate")
	assert.Error(t, err)
	_, err = parseCommand(":load")
	assert.Error(t, err)
}

func TestIncomplete(t *testing.T) {
	assert.True(t, incomplete("class A is"))
	assert.True(t, incomplete("class A is\n  var x: 1"))
	assert.False(t, incomplete("class A is var x: 1 end"))
	assert.False(t, incomplete("class A is var x 1 end"))
	assert.False(t, incomplete("class A is var $: 1"))
}

func TestREPL_Session(t *testing.T) {
	var out bytes.Buffer
	r := newREPLState(&out)

	assert.False(t, r.handle("class Point is\n  var x: 1\n  method get is return x end\nend"))
	assert.Contains(t, out.String(), "registered Point")

	assert.False(t, r.handle("class Main is var p: Point() var y: p.get end"))
	assert.Contains(t, out.String(), "registered Main")

	out.Reset()
	assert.False(t, r.handle(":type Point x"))
	assert.Equal(t, "Point.x: Integer\n", out.String())

	out.Reset()
	assert.False(t, r.handle(":type Point get"))
	assert.Equal(t, "Point.get: Integer\n", out.String())

	out.Reset()
	assert.False(t, r.handle(":check"))
	assert.Equal(t, "ok: 6 units\n", out.String())

	out.Reset()
	assert.False(t, r.handle("class Broken is var z: w end"))
	assert.Contains(t, out.String(), "No definition for variable w")
	assert.Len(t, r.units, 2)

	out.Reset()
	assert.False(t, r.handle(":ast"))
	assert.Contains(t, out.String(), `"className": "Main"`)

	out.Reset()
	assert.False(t, r.handle(":reset"))
	assert.Empty(t, r.units)
	assert.False(t, r.handle(":check"))
	assert.Contains(t, out.String(), "no units entered")

	assert.True(t, r.handle(":quit"))
}

func TestREPL_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Box.olang")
	require.NoError(t, ioutil.WriteFile(path, []byte("class Box is var width: 2.5 end"), 0644))

	var out bytes.Buffer
	r := newREPLState(&out)
	assert.False(t, r.handle(`:load "`+path+`"`))
	assert.Contains(t, out.String(), "registered Box")

	out.Reset()
	assert.False(t, r.handle(":type Box width"))
	assert.Equal(t, "Box.width: Real\n", out.String())
}

type scriptedPrompter struct {
	lines []string
	err   error
	calls int
}

func (p *scriptedPrompter) Prompt(string) (string, error) {
	p.calls++
	if len(p.lines) == 0 {
		return "", p.err
	}
	line := p.lines[0]
	p.lines = p.lines[1:]
	return line, nil
}

func TestReadByParseProbe(t *testing.T) {
	p := &scriptedPrompter{lines: []string{"class A is", "var x: 1", "end"}, err: io.EOF}
	src, ok := readByParseProbe(p)
	assert.True(t, ok)
	assert.Equal(t, "class A is\nvar x: 1\nend", src)

	_, ok = readByParseProbe(p)
	assert.False(t, ok)
}

func TestReadByParseProbe_PromptFailure(t *testing.T) {
	p := &scriptedPrompter{err: stderrors.New("terminal gone")}
	_, ok := readByParseProbe(p)
	assert.False(t, ok)
	assert.Equal(t, 1, p.calls)
}
