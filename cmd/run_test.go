package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/oilspill/restart"
)

func TestGenerateAndInspect(t *testing.T) {
	meshFile := filepath.Join(t.TempDir(), "box.msh")
	rootCmd.SetArgs([]string{"generate", "-o", meshFile, "--nx", "4", "--ny", "3", "--xmax", "2"})
	require.NoError(t, rootCmd.Execute())

	m, err := Inspect(meshFile, "proportional", 0.5)
	require.NoError(t, err)
	assert.Equal(t, 24, len(m.Triangles))
	// 4 corner points and 14 perimeter lines ahead of the triangles
	assert.Equal(t, 4+14+24, len(m.Cells))

	_, err = Inspect("", "diffusion", 1)
	assert.Error(t, err)
	_, err = Inspect(meshFile, "upwind", 1)
	assert.Error(t, err)
	assert.Error(t, Generate(&GenerateOptions{OutputFile: meshFile, NX: 0, NY: 1, XMax: 1, YMax: 1}))
}

func TestRunOilSpill(t *testing.T) {
	dir := t.TempDir()
	meshFile := filepath.Join(dir, "bay.msh")
	require.NoError(t, Generate(&GenerateOptions{OutputFile: meshFile, NX: 6, NY: 4, XMax: 0.9, YMax: 0.6}))
	configFile := filepath.Join(dir, "bay.toml")
	resultsDir := filepath.Join(dir, "results")
	require.NoError(t, os.WriteFile(configFile, []byte(`
[geometry]
filepath = "`+meshFile+`"
fish_area = [[0.0, 0.45], [0.0, 0.2]]
initial_oil_area = [0.35, 0.45]
initial_oil_radius = 0.2

[settings]
nSteps = 12
t_start = 0.0
t_end = 0.6
diffusivity = 0.001

[IO]
writeFrequency = 4
logName = "`+filepath.Join(dir, "bay.log")+`"
resultsDir = "`+resultsDir+`"
`), 0644))

	opts := &RunOptions{ConfigFile: configFile, Width: 200, Height: 150, FPS: 5, Fast: true}
	require.NoError(t, RunOilSpill(opts, configFile))

	results := filepath.Join(resultsDir, "bay_results")
	for _, name := range []string{
		"oil_area_time.yaml", "oil_area_time.png", "oil.avi",
		filepath.Join("images", "oil_00000.png"), filepath.Join("images", "oil_00003.png"),
		filepath.Join("input", "bay_restartFile.txt"),
	} {
		_, err := os.Stat(filepath.Join(results, name))
		assert.NoError(t, err, name)
	}
	snap, err := restart.ReadFile(filepath.Join(results, "input", "bay_restartFile.txt"))
	require.NoError(t, err)
	assert.Equal(t, 0.6, snap.Time)
	logData, err := os.ReadFile(filepath.Join(dir, "bay.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logData), "Simulation Ended")

	{ // Find all config files in the folder
		opts := &RunOptions{Folder: dir, FindAll: true}
		files, err := opts.ConfigFiles()
		require.NoError(t, err)
		assert.Equal(t, []string{configFile}, files)
		opts.Folder = filepath.Join(results, "images")
		_, err = opts.ConfigFiles()
		assert.Error(t, err)
	}
	assert.Error(t, RunOilSpill(opts, filepath.Join(dir, "missing.toml")))

	{ // A failed run returns its error and still writes the CPU profile
		profileDir := t.TempDir()
		rootCmd.SetArgs([]string{"run", "-c", filepath.Join(dir, "missing.toml"),
			"--profile", "--profile-dir", profileDir})
		assert.Error(t, rootCmd.Execute())
		_, err = os.Stat(filepath.Join(profileDir, "cpu.pprof"))
		assert.NoError(t, err)
	}
}
