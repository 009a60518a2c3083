package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/annosim/internal/domain/simulation"
	"github.com/okian/annosim/internal/domain/types"
	"github.com/smartystreets/goconvey/convey"
)

// run executes the root command with args and returns stdout.
func run(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	convey.Convey("Given the version command", t, func() {
		convey.Convey("When run as text", func() {
			out, err := run("version")

			convey.Convey("Then it prints the version", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldEqual, "annosim version "+version+"\n")
			})
		})

		convey.Convey("When run as JSON", func() {
			out, err := run("version", "--json")

			convey.Convey("Then it prints a JSON object", func() {
				convey.So(err, convey.ShouldBeNil)
				var got map[string]string
				convey.So(json.Unmarshal([]byte(out), &got), convey.ShouldBeNil)
				convey.So(got["version"], convey.ShouldEqual, version)
			})
		})
	})
}

func TestGenerateCmd(t *testing.T) {
	convey.Convey("Given a temporary output directory", t, func() {
		t.Setenv("ANNOSIM_CONFIG", "")
		dir := t.TempDir()

		convey.Convey("When generating with a seed and a SQLite target", func() {
			db := filepath.Join(dir, "annosim.db")
			out, err := run("generate", "--seed", "7", "--out", dir, "--sqlite", db)

			convey.Convey("Then both tables, the database and the manifest exist", func() {
				convey.So(err, convey.ShouldBeNil)
				for _, name := range []string{"individual_performance.csv", "team_performance.csv", "annosim.db", "manifest.yaml"} {
					_, statErr := os.Stat(filepath.Join(dir, name))
					convey.So(statErr, convey.ShouldBeNil)
				}
				convey.So(out, convey.ShouldContainSubstring, "(seed 7): 112 records over 24 weeks")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_, err := run("generate", "--config", filepath.Join(dir, "missing.yaml"), "--out", dir)

			convey.Convey("Then the command fails before writing", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "failed to load config")
				_, statErr := os.Stat(filepath.Join(dir, "team_performance.csv"))
				convey.So(os.IsNotExist(statErr), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a config file shortens the run", func() {
			cfgPath := filepath.Join(dir, "annosim.yaml")
			convey.So(os.WriteFile(cfgPath, []byte("simulation:\n  total_weeks: 10\n"), 0o600), convey.ShouldBeNil)
			out, err := run("generate", "--config", cfgPath, "--out", dir, "--json")

			convey.Convey("Then the summary reflects the file", func() {
				convey.So(err, convey.ShouldBeNil)
				var got struct {
					Weeks   int `json:"weeks"`
					Records int `json:"records"`
				}
				convey.So(json.Unmarshal([]byte(out), &got), convey.ShouldBeNil)
				convey.So(got.Weeks, convey.ShouldEqual, 10)
				// four core members for 10 weeks, the hire from week 9
				convey.So(got.Records, convey.ShouldEqual, 42)
			})
		})
	})
}

func TestDriftAndRankCmds(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		t.Setenv("ANNOSIM_CONFIG", "")

		convey.Convey("When printing drift as JSON", func() {
			out, err := run("drift", "--json")

			convey.Convey("Then the core team and the hire are listed", func() {
				convey.So(err, convey.ShouldBeNil)
				var rows []simulation.DriftSummary
				convey.So(json.Unmarshal([]byte(out), &rows), convey.ShouldBeNil)
				convey.So(len(rows), convey.ShouldEqual, 2)
				convey.So(rows[0].Role, convey.ShouldEqual, "core")
				convey.So(rows[1].ActiveWeeks, convey.ShouldEqual, 16)
			})
		})

		convey.Convey("When printing drift as text", func() {
			out, err := run("drift")

			convey.Convey("Then a table is printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldStartWith, "Drift at week 24\n")
				convey.So(out, convey.ShouldContainSubstring, "Alex")
			})
		})

		convey.Convey("When ranking", func() {
			out, err := run("rank", "--json")

			convey.Convey("Then the new hire is the weakest member", func() {
				convey.So(err, convey.ShouldBeNil)
				var ranking []types.Entry
				convey.So(json.Unmarshal([]byte(out), &ranking), convey.ShouldBeNil)
				convey.So(len(ranking), convey.ShouldEqual, 5)
				convey.So(ranking[0].Member, convey.ShouldEqual, "Alex")
				convey.So(ranking[0].Rank, convey.ShouldEqual, 1)
			})
		})
	})
}
