package architecture_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const modulesPrefix = "biochar/internal/modules/"

func TestHexagonalLayerImports(t *testing.T) {
	t.Parallel()
	fset := token.NewFileSet()
	root := filepath.Join("..", "modules")
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		slash := filepath.ToSlash(path)
		module := moduleName(slash)
		layer := detectLayer(slash)
		if module == "" || layer == "" {
			return nil
		}
		node, parseErr := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if parseErr != nil {
			return parseErr
		}
		for _, imp := range node.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)
			if !strings.Contains(importPath, modulesPrefix) {
				continue
			}
			if violatesLayerRule(module, layer, importPath) {
				t.Fatalf("forbidden import in %s (%s): %s", slash, layer, importPath)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk modules: %v", err)
	}
}

func moduleName(path string) string {
	parts := strings.Split(path, "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "modules" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

func detectLayer(path string) string {
	for _, layer := range []string{"adapter/in", "adapter/out", "usecase", "service", "domain", "port/in", "port/out", "dto"} {
		if strings.Contains(path, "/"+layer+"/") {
			return layer
		}
	}
	return ""
}

// hasSegment reports whether path contains seg as whole path segments,
// including as its final element.
func hasSegment(path, seg string) bool {
	return strings.Contains(path+"/", "/"+seg+"/")
}

func isPortIn(path string) bool { return hasSegment(path, "port/in") }

func isDTO(path string) bool { return hasSegment(path, "dto") }

func violatesLayerRule(module, layer, importPath string) bool {
	sameModule := strings.Contains(importPath, "/internal/modules/"+module+"/")
	if layer == "domain" && !sameModule {
		return true
	}
	if !sameModule {
		if hasSegment(importPath, "service") || hasSegment(importPath, "adapter") || hasSegment(importPath, "usecase") {
			return true
		}
		if isPortIn(importPath) || isDTO(importPath) {
			return false
		}
	}

	switch layer {
	case "adapter/in":
		return !isPortIn(importPath) && !isDTO(importPath)
	case "usecase":
		return hasSegment(importPath, "adapter")
	case "service":
		return hasSegment(importPath, "adapter") || hasSegment(importPath, "usecase")
	case "domain":
		return hasSegment(importPath, "adapter") || hasSegment(importPath, "usecase") || hasSegment(importPath, "service")
	default:
		return false
	}
}

// Platform packages are shared infrastructure and must not reach back into
// any module.
func TestPlatformDoesNotImportModules(t *testing.T) {
	t.Parallel()
	fset := token.NewFileSet()
	err := filepath.WalkDir(filepath.Join("..", "platform"), func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		node, parseErr := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if parseErr != nil {
			return parseErr
		}
		for _, imp := range node.Imports {
			if strings.Contains(strings.Trim(imp.Path.Value, `"`), modulesPrefix) {
				t.Fatalf("platform file %s imports a module: %s", filepath.ToSlash(path), imp.Path.Value)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk platform: %v", err)
	}
}

func TestLayerRules(t *testing.T) {
	t.Parallel()
	cases := []struct {
		module, layer, imp string
		want               bool
	}{
		{"pyrolysis", "adapter/out", modulesPrefix + "catalog/port/in", false},
		{"pyrolysis", "adapter/out", modulesPrefix + "catalog/usecase", true},
		{"pyrolysis", "usecase", modulesPrefix + "pyrolysis/adapter/out", true},
		{"pyrolysis", "service", modulesPrefix + "pyrolysis/port/out", false},
		{"pyrolysis", "domain", modulesPrefix + "identity/dto", true},
		{"catalog", "adapter/in", modulesPrefix + "identity/dto", false},
		{"catalog", "adapter/in", modulesPrefix + "catalog/service", true},
		{"pyrolysis", "service", modulesPrefix + "catalog/service", true},
		{"pyrolysis", "usecase", modulesPrefix + "pyrolysis/adapter", true},
		{"pyrolysis", "adapter/out", modulesPrefix + "integration/port/in", false},
		{"pyrolysis", "domain", modulesPrefix + "pyrolysis/service", true},
	}
	for _, tc := range cases {
		if got := violatesLayerRule(tc.module, tc.layer, tc.imp); got != tc.want {
			t.Fatalf("violatesLayerRule(%s, %s, %s) = %t, want %t", tc.module, tc.layer, tc.imp, got, tc.want)
		}
	}
}
