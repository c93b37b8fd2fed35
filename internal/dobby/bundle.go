package dobby

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BundleGenerator wraps DobbyBundleGenerator, which turns a Dobby JSON spec
// into an OCI bundle.
type BundleGenerator struct {
	cmd    Commander
	binary string
}

// NewBundleGenerator returns a BundleGenerator running binary through cmd.
func NewBundleGenerator(cmd Commander, binary string) *BundleGenerator {
	return &BundleGenerator{cmd: cmd, binary: binary}
}

// Generate writes the bundle for spec into outDir and returns the path of
// the generated config.json.
func (g *BundleGenerator) Generate(ctx context.Context, spec, outDir string) (string, error) {
	if _, err := g.cmd.Run(ctx, g.binary, "--inputpath", spec, "--outputDirectory", outDir); err != nil {
		return "", err
	}
	configPath := filepath.Join(outDir, "config.json")
	if _, err := os.Stat(configPath); err != nil {
		return "", fmt.Errorf("%s produced no config.json: %w", g.binary, err)
	}
	return configPath, nil
}

// PluginLauncher wraps DobbyPluginLauncher, which runs the RDK plugins of a
// bundle for one OCI hook.
type PluginLauncher struct {
	cmd    Commander
	binary string
}

// NewPluginLauncher returns a PluginLauncher running binary through cmd.
func NewPluginLauncher(cmd Commander, binary string) *PluginLauncher {
	return &PluginLauncher{cmd: cmd, binary: binary}
}

// Run executes the plugins for hook (for example "createRuntime") with the
// bundle configuration at configPath.
func (l *PluginLauncher) Run(ctx context.Context, hook, configPath string) (Output, error) {
	return l.cmd.Run(ctx, l.binary, "--hook", hook, "--config", configPath)
}

// Untar extracts a gzip-compressed tar archive into dest. Entries that would
// escape dest are rejected.
func Untar(archive, dest string) error {
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("%s: %w", archive, err)
	}
	defer gz.Close()

	root, err := filepath.Abs(dest)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}
	if root, err = filepath.EvalSymlinks(root); err != nil {
		return err
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", archive, err)
		}

		target := filepath.Join(root, hdr.Name)
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("%s: entry %q escapes destination", archive, hdr.Name)
		}
		if err := checkParent(root, target); err != nil {
			return fmt.Errorf("%s: entry %q: %w", archive, hdr.Name, err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(hdr.Linkname) {
				// Absolute links point into the container rootfs, not the host.
				if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
					return err
				}
				if err := os.Symlink(hdr.Linkname, target); err != nil {
					return err
				}
				continue
			}
			resolved := filepath.Join(filepath.Dir(target), hdr.Linkname)
			if !strings.HasPrefix(resolved, root+string(os.PathSeparator)) && resolved != root {
				return fmt.Errorf("%s: link %q escapes destination", archive, hdr.Name)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		}
	}
}

// checkParent rejects targets whose existing parent directory resolves,
// through an extracted symlink, to somewhere outside root.
func checkParent(root, target string) error {
	dir := filepath.Dir(target)
	for {
		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			if resolved != root && !strings.HasPrefix(resolved, root+string(os.PathSeparator)) {
				return fmt.Errorf("parent resolves outside destination")
			}
			return nil
		}
		if !os.IsNotExist(err) {
			return err
		}
		if dir == root {
			return nil
		}
		dir = filepath.Dir(dir)
	}
}

func writeFile(path string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	// Existing entries are replaced, never written through.
	if fi, err := os.Lstat(path); err == nil {
		if fi.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("%s: refusing to write through symlink", path)
		}
		if err := os.Remove(path); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
