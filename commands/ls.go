package commands

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	fcolor "github.com/fatih/color"

	"github.com/vterm/vconsole/core/console"
	"github.com/vterm/vconsole/core/vfs"
)

// Ls implements the UNIX ls command over the virtual filesystem.
func Ls(ctx *console.Context) int {
	cmd := &SimpleCommand{
		Use:   "ls [-al] [FILE]...",
		Short: "List directory contents.",
	}

	opts := cmd.Flags()
	listAll := opts.Bool('a', "don't ignore entries starting with .")
	longListing := opts.Bool('l', "use a long listing format")

	var color ColorPrinter
	color.Init(opts, ctx)

	return cmd.Run(ctx, "ls", func() int {
		targets := opts.Args()
		if len(targets) == 0 {
			targets = append(targets, ".")
		}
		sort.Strings(targets)
		showNames := len(targets) > 1

		exitCode := 0
		for i, target := range targets {
			abs := ctx.AbsPath(target)

			meta, err := ctx.FS.Stat(ctx.Context, abs)
			if err != nil {
				ctx.Errorf("ls", "%s: %v", target, err)
				exitCode = 1
				continue
			}

			// A non-directory target lists as itself.
			if !meta.IsDir() {
				printEntry(ctx, &color, *longListing, meta, target)
				continue
			}

			entries, err := ctx.FS.ReadDir(ctx.Context, abs)
			if err != nil {
				ctx.Errorf("ls", "%s: %v", target, err)
				exitCode = 1
				continue
			}

			if showNames {
				if i > 0 {
					fmt.Fprintln(ctx.Stdout)
				}
				fmt.Fprintf(ctx.Stdout, "%s:\n", target)
			}

			if *longListing {
				tw := tabwriter.NewWriter(ctx.Stdout, 0, 0, 1, ' ', 0)
				for _, ent := range entries {
					if !*listAll && strings.HasPrefix(ent.Name, ".") {
						continue
					}
					childMeta, err := ctx.FS.Lstat(ctx.Context, vfs.Join(abs, ent.Name))
					if err != nil {
						continue
					}
					fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
						modeString(childMeta),
						linkCount(childMeta),
						childMeta.UID,
						childMeta.GID,
						childMeta.Size,
						modTime(childMeta.ModifiedAt),
						color.Sprintf(entryColor(childMeta, ent.Name), "%s", ent.Name))
				}
				tw.Flush()
			} else {
				for _, ent := range entries {
					if !*listAll && strings.HasPrefix(ent.Name, ".") {
						continue
					}
					childMeta, err := ctx.FS.Lstat(ctx.Context, vfs.Join(abs, ent.Name))
					if err != nil {
						continue
					}
					fmt.Fprintln(ctx.Stdout, color.Sprintf(entryColor(childMeta, ent.Name), "%s", ent.Name))
				}
			}
		}
		return exitCode
	})
}

func printEntry(ctx *console.Context, color *ColorPrinter, long bool, meta *vfs.INode, name string) {
	if long {
		fmt.Fprintf(ctx.Stdout, "%s %d %d %d %d %s %s\n",
			modeString(meta), linkCount(meta), meta.UID, meta.GID, meta.Size,
			modTime(meta.ModifiedAt), color.Sprintf(entryColor(meta, name), "%s", name))
		return
	}
	fmt.Fprintln(ctx.Stdout, color.Sprintf(entryColor(meta, name), "%s", name))
}

func modeString(meta *vfs.INode) string {
	mode := meta.Perm & fs.ModePerm
	switch meta.Kind {
	case vfs.KindDirectory:
		mode |= fs.ModeDir
	case vfs.KindSymlink:
		mode |= fs.ModeSymlink
	case vfs.KindBlockDevice:
		mode |= fs.ModeDevice
	case vfs.KindCharDevice:
		mode |= fs.ModeDevice | fs.ModeCharDevice
	case vfs.KindFIFO:
		mode |= fs.ModeNamedPipe
	}
	return mode.String()
}

func linkCount(meta *vfs.INode) int {
	if meta.LinkCount > 0 {
		return meta.LinkCount
	}
	if meta.IsDir() {
		return 2
	}
	return 1
}

// modTime renders like coreutils: time of day within the current year,
// year otherwise.
func modTime(t time.Time) string {
	if t.Year() >= time.Now().Year() {
		return t.Format("Jan _2 15:04")
	}
	return t.Format("Jan _2 2006")
}

var archiveExts = map[string]bool{
	"tar": true, "tgz": true, "zip": true, "gz": true, "bz2": true,
	"tbz": true, "deb": true, "rpm": true, "jar": true, "rar": true,
}

func entryColor(meta *vfs.INode, name string) *fcolor.Color {
	switch {
	case meta.IsDir():
		return ColorBoldBlue
	case meta.Kind == vfs.KindSymlink:
		return ColorBoldCyan
	case meta.Perm&0111 > 0:
		return ColorBoldGreen
	case archiveExts[strings.TrimPrefix(vfs.Ext(name), ".")]:
		return ColorBoldRed
	default:
		return fcolor.New(fcolor.FgHiWhite)
	}
}

func init() {
	addBuiltin("ls", "ls [-al] [FILE]...", "List directory contents.", Ls)
}
