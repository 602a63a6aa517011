package main

import (
	"bytes"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/kageurufu/cfddns"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	envpatch "gotest.tools/v3/env"
	"gotest.tools/v3/fs"
)

func TestFirstRun(t *testing.T) {
	dir := fs.NewDir(t, "cfddns")
	defer dir.Remove()
	path := dir.Join("cfddns", "config.yaml")
	defer envpatch.Patch(t, "CFDDNS_CONFIG", path)()

	var buf bytes.Buffer
	err := run(log.New(&buf, "", 0))
	assert.Assert(t, errors.Is(err, cfddns.ErrConfigNotFound))
	assert.Check(t, is.Contains(err.Error(), path))
	assert.Check(t, is.Contains(buf.String(), path))

	_, err = os.Stat(path)
	assert.NilError(t, err)
}

func TestConfigPathOverride(t *testing.T) {
	defer envpatch.Patch(t, "CFDDNS_CONFIG", "/etc/cfddns.yaml")()

	p, err := configPath()
	assert.NilError(t, err)
	assert.Equal(t, p, "/etc/cfddns.yaml")
}

func TestDefaultConfigPath(t *testing.T) {
	defer envpatch.Patch(t, "CFDDNS_CONFIG", "")()
	defer envpatch.Patch(t, "HOME", "/home/someone")()

	p, err := configPath()
	assert.NilError(t, err)
	assert.Equal(t, p, "/home/someone/.config/cfddns/config.yaml")
}

func TestRejectsIPv6Override(t *testing.T) {
	dir := fs.NewDir(t, "cfddns", fs.WithFile("config.yaml", "- zone: abc\n  names: [home.example.com]\n", fs.WithMode(0600)))
	defer dir.Remove()
	defer envpatch.Patch(t, "CFDDNS_CONFIG", dir.Join("config.yaml"))()
	defer envpatch.Patch(t, "CFDDNS_IP", "::1")()

	err := run(log.New(&bytes.Buffer{}, "", 0))
	assert.ErrorContains(t, err, "CFDDNS_IP")
	assert.ErrorContains(t, err, "IPv4")
}
