package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

// buildInfo identifies the running binary. main fills in the first three
// fields from its ldflags.
type buildInfo struct {
	version string
	commit  string
	date    string
}

var build = buildInfo{version: "dev", commit: "none", date: "unknown"}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show which cephdash build is running",
	Long:  `Show the cephdash release, the commit it was built from and the Go toolchain and platform of the binary.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		short, err := cmd.Flags().GetBool("short")
		if err != nil {
			return err
		}
		return build.write(cmd.OutOrStdout(), short)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("short", false, "Print the bare release string")
}

// SetBuild records the release, commit and build date of the binary.
func SetBuild(version, commit, date string) {
	build = buildInfo{version: version, commit: commit, date: date}
}

func (b buildInfo) write(w io.Writer, short bool) error {
	if short {
		_, err := fmt.Fprintln(w, b.version)
		return err
	}
	lines := [][2]string{
		{"commit", b.commit},
		{"built", b.date},
		{"go", runtime.Version()},
		{"os/arch", runtime.GOOS + "/" + runtime.GOARCH},
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "cephdash %s\n", releaseTag(b.version))
	for _, l := range lines {
		fmt.Fprintf(&sb, "%s: %s\n", l[0], l[1])
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// releaseTag prefixes numbered releases with v. Development builds are
// shown as is.
func releaseTag(v string) string {
	if v == "" || v == "dev" || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}
