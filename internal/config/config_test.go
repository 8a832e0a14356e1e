package config

import (
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	assert.NilError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeTempConfig(t, `{
		"version": 1,
		"dumplogfile": 1,
		"trace": 0,
		"dumpdata": false,
		"directread": false,
		"sortcols": 0,
		"sources": [{"type":"ORACLE","alias":"src1","name":"ORCL","user":"u","password":"p","server":"host:1521","eventtable":"EVT","tables":["T1"]}],
		"targets": [{"type":"KAFKA","alias":"tgt1","brokers":"localhost:9092","topic":"cdc.t1","source":"src1","trace":0}]
	}`)
	cfg, err := Load(path)
	assert.NilError(t, err)
	assert.Equal(t, cfg.Version, 1)
	assert.Equal(t, len(cfg.Sources), 1)
	assert.Equal(t, cfg.Sources[0].Alias, "src1")
	assert.Equal(t, len(cfg.Targets), 1)
}

func TestLoadMissingVersionIsFatal(t *testing.T) {
	path := writeTempConfig(t, `{"sources":[{"type":"ORACLE","alias":"a"}],"targets":[{"type":"KAFKA","alias":"b"}]}`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "version")
}

func TestLoadWrongVersionIsFatal(t *testing.T) {
	path := writeTempConfig(t, `{"version":2,"sources":[{"type":"ORACLE","alias":"a"}],"targets":[{"type":"KAFKA","alias":"b"}]}`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "unsupported protocol version")
}

func TestLoadMissingSourcesIsFatal(t *testing.T) {
	path := writeTempConfig(t, `{"version":1,"targets":[{"type":"KAFKA","alias":"b"}]}`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "sources")
}

func TestLoadMissingFileIsFatal(t *testing.T) {
	_, err := Load("/nonexistent/path/config.json")
	assert.ErrorContains(t, err, "read")
}
