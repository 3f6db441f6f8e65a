package config

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilosa/etalon/etalon"
)

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
}

func TestLoadDefaults(t *testing.T) {
	c, v, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, NewConfig(), c)
}

func TestLoadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/etc/etalon.toml", `
active = true
source = "env"
env-var = "MY_APP_TIMINGS"
cache-size = 16
`)
	c, _, err := Load(fs, "/etc/etalon.toml")
	require.NoError(t, err)
	assert.True(t, c.Active)
	assert.Equal(t, SourceEnv, c.Source)
	assert.Equal(t, "MY_APP_TIMINGS", c.EnvVar)
	assert.Equal(t, 16, c.CacheSize)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/etalon.toml", `cache-size = 16`)
	t.Setenv("ETALON_CACHE_SIZE", "32")
	t.Setenv("ETALON_ACTIVE", "")

	c, _, err := Load(fs, "/etalon.toml")
	require.NoError(t, err)
	assert.Equal(t, 32, c.CacheSize)
	assert.True(t, c.Active, "a present but empty ETALON_ACTIVE activates")
}

func TestLoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/unknown.toml", `potato = 1`)
	writeFile(t, fs, "/badsource.toml", `source = "carrier-pigeon"`)
	writeFile(t, fs, "/badcache.toml", `cache-size = -1`)
	writeFile(t, fs, "/badenv.toml", "source = \"env\"\nenv-var = \"\"")

	tests := []struct {
		path string
		msg  string
	}{
		{path: "/missing.toml", msg: "reading configuration file"},
		{path: "/unknown.toml", msg: "invalid option in configuration file: potato"},
		{path: "/badsource.toml", msg: "unknown activation source"},
		{path: "/badcache.toml", msg: "must not be negative"},
		{path: "/badenv.toml", msg: "env source needs an env-var"},
	}
	for _, test := range tests {
		t.Run(test.path, func(t *testing.T) {
			_, _, err := Load(fs, test.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.msg)
		})
	}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{"active", "cache-size", "env-var", "source", "verbose", "watch"}, Keys())
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		in   interface{}
		want bool
	}{
		{in: nil, want: false},
		{in: false, want: false},
		{in: "false", want: false},
		{in: "0", want: false},
		{in: true, want: true},
		{in: "true", want: true},
		{in: "1", want: true},
		{in: "", want: true},
		{in: "yes please", want: true},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, Truthy(test.in), "truthy(%#v)", test.in)
	}
}

func TestNewEtalonMemory(t *testing.T) {
	c := NewConfig()
	e, err := c.NewEtalon(nil)
	require.NoError(t, err)
	assert.False(t, e.IsActive())

	c.Active = true
	e, err = c.NewEtalon(nil)
	require.NoError(t, err)
	assert.True(t, e.IsActive())
}

func TestNewEtalonEnv(t *testing.T) {
	t.Setenv("ETALON_CONFIG_TEST", "1")
	c := NewConfig()
	c.Source = SourceEnv
	c.EnvVar = "ETALON_CONFIG_TEST"
	e, err := c.NewEtalon(nil)
	require.NoError(t, err)
	assert.True(t, e.IsActive())
	assert.False(t, e.Deactivate())
}

func TestNewEtalonConfigSource(t *testing.T) {
	c := NewConfig()
	c.Source = SourceConfig
	_, err := c.NewEtalon(nil)
	require.Error(t, err)

	v := viper.New()
	v.Set("active", "true")
	e, err := c.NewEtalon(v, etalon.WithReporter(etalon.NopReporter{}))
	require.NoError(t, err)
	assert.True(t, e.IsActive())
}

func TestSource(t *testing.T) {
	v := viper.New()
	v.SetConfigType("toml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(`active = false`)))

	s := NewSource(v, "active")
	assert.False(t, s.Read())
	s.Write(true)
	assert.True(t, s.Read())

	var changes []bool
	s.onChange = func(active bool) { changes = append(changes, active) }

	// chmod events are ignored
	s.handle(fsnotify.Event{Name: "etalon.toml", Op: fsnotify.Chmod})
	assert.True(t, s.Read())

	require.NoError(t, v.ReadConfig(bytes.NewBufferString(`active = false`)))
	s.handle(fsnotify.Event{Name: "etalon.toml", Op: fsnotify.Write})
	assert.False(t, s.Read())

	require.NoError(t, v.ReadConfig(bytes.NewBufferString(`active = "on"`)))
	s.handle(fsnotify.Event{Name: "etalon.toml", Op: fsnotify.Create})
	assert.True(t, s.Read())
	assert.Equal(t, []bool{false, true}, changes)
}

func TestSourceMissingKey(t *testing.T) {
	s := NewSource(viper.New(), "active")
	assert.False(t, s.Read())
	assert.False(t, s.Reload())
}

func TestNewViperFlags(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/etalon.toml", "iterations = 3\nsource = \"env\"\nverbose = true\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String(FileKey, "", "")
	flags.Int("iterations", 10, "")
	flags.String("source", SourceMemory, "")
	require.NoError(t, flags.Parse([]string{"--config", "/etalon.toml", "--source", "config"}))

	v, err := NewViper(fs, flags, "")
	require.NoError(t, err)
	assert.Equal(t, "/etalon.toml", v.ConfigFileUsed())
	assert.Equal(t, 3, v.GetInt("iterations"), "flag keys are accepted in the file")
	assert.Equal(t, SourceConfig, v.GetString("source"), "set flags win over the file")
	assert.True(t, v.GetBool("verbose"))

	writeFile(t, fs, "/bad.toml", "iterations = 3\npotato = 1\n")
	_, err = NewViper(fs, flags, "/bad.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid option in configuration file: potato")
}

func TestNewEtalonWatchWithoutFile(t *testing.T) {
	t.Setenv("ETALON_SOURCE", "config")
	t.Setenv("ETALON_WATCH", "true")
	c, v, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	require.Equal(t, SourceConfig, c.Source)
	require.True(t, c.Watch)

	_, err = c.NewEtalon(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a configuration file")

	err = NewSource(v, "active").Watch(nil)
	assert.EqualError(t, err, "watching configuration needs a configuration file")
}

func TestSourceWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etalon.toml")
	require.NoError(t, ioutil.WriteFile(path, []byte("active = false\n"), 0644))

	v, err := NewViper(afero.NewOsFs(), nil, path)
	require.NoError(t, err)
	s := NewSource(v, "active")
	require.False(t, s.Read())

	changed := make(chan bool, 64)
	require.NoError(t, s.Watch(func(active bool) {
		select {
		case changed <- active:
		default:
		}
	}))

	require.NoError(t, ioutil.WriteFile(path, []byte("active = true\n"), 0644))
	timeout := time.After(5 * time.Second)
	for {
		select {
		case active := <-changed:
			if active {
				assert.True(t, s.Read())
				return
			}
		case <-timeout:
			t.Fatal("no reload after the configuration file changed")
		}
	}
}

func TestNewEtalonWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etalon.toml")
	require.NoError(t, ioutil.WriteFile(path, []byte("source = \"config\"\nwatch = true\nactive = true\n"), 0644))

	c, v, err := Load(afero.NewOsFs(), path)
	require.NoError(t, err)
	e, err := c.NewEtalon(v)
	require.NoError(t, err)
	require.True(t, e.IsActive())

	require.NoError(t, ioutil.WriteFile(path, []byte("source = \"config\"\nwatch = true\nactive = false\n"), 0644))
	assert.Eventually(t, func() bool { return !e.IsActive() }, 5*time.Second, 10*time.Millisecond)
}
