// preprocessor.go implements the shader source include/define/conditional
// protocol: #include "relative/path.wgsl" (recursive, cycle-avoided against
// the active include chain), #define KEY [VAL] (stripped pre-compile into a
// defines map), #if KEY [VAL] / #ifndef KEY / #else / #endif (conditional
// block resolution against that map), and precision_float token
// substitution (half-float when the device advertises it, f32 otherwise).
package shader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Preprocessor resolves includes and conditional defines in raw shader
// source before it reaches WGSL reflection.
type Preprocessor interface {
	// Process resolves sourcePath's contents against searchRoots, returning
	// fully expanded WGSL source with all directives consumed.
	//
	// Parameters:
	//   - sourcePath: path to the top-level shader source file
	//
	// Returns:
	//   - string: processed WGSL source
	//   - error: an error if a directive is malformed or an include cannot be resolved
	Process(sourcePath string) (string, error)

	// Defines returns the accumulated #define KEY->VAL map after the most
	// recent Process call.
	Defines() map[string]string
}

type condFrame struct {
	active bool // whether lines under this frame currently emit
	taken  bool // whether some branch of this frame has already been chosen
}

type preprocessor struct {
	searchRoots []string
	defines     map[string]string
	halfFloat   bool
	visiting    map[string]bool
}

var _ Preprocessor = &preprocessor{}

// NewPreprocessor creates a Preprocessor. searchRoots is consulted in order
// when resolving #include paths that do not resolve relative to the
// including file; an empty slice defaults to ["engine/shaders"]. presets
// seeds the defines map (e.g. quality-tier switches set by scene config).
//
// Parameters:
//   - searchRoots: include search roots, tried after the including file's directory
//   - presets: initial #define values
//   - halfFloat: whether precision_float should resolve to a half-float type
//
// Returns:
//   - Preprocessor: a ready-to-use preprocessor
func NewPreprocessor(searchRoots []string, presets map[string]string, halfFloat bool) Preprocessor {
	if len(searchRoots) == 0 {
		searchRoots = []string{"engine/shaders"}
	}
	defines := make(map[string]string, len(presets))
	for k, v := range presets {
		defines[k] = v
	}
	return &preprocessor{
		searchRoots: searchRoots,
		defines:     defines,
		halfFloat:   halfFloat,
	}
}

func (p *preprocessor) Defines() map[string]string { return p.defines }

func (p *preprocessor) Process(sourcePath string) (string, error) {
	p.visiting = make(map[string]bool)
	return p.processFile(sourcePath)
}

func (p *preprocessor) processFile(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if p.visiting[abs] {
		return "", fmt.Errorf("shader: include cycle at %s", path)
	}
	p.visiting[abs] = true
	defer delete(p.visiting, abs)

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("shader: read %s: %w", path, err)
	}

	return p.processSource(string(raw), filepath.Dir(path))
}

// resolveInclude locates relPath, trying the including file's directory
// first, then each configured search root in order.
func (p *preprocessor) resolveInclude(relPath, fromDir string) (string, error) {
	candidates := append([]string{fromDir}, p.searchRoots...)
	for _, root := range candidates {
		candidate := filepath.Join(root, relPath)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("shader: include %q not found in %v", relPath, candidates)
}

func (p *preprocessor) processSource(source, fromDir string) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	var stack []condFrame

	active := func() bool {
		for _, f := range stack {
			if !f.active {
				return false
			}
		}
		return true
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "#include"):
			relPath, err := parseQuoted(trimmed)
			if err != nil {
				return "", fmt.Errorf("line %d: %w", i+1, err)
			}
			if !active() {
				continue
			}
			resolved, err := p.resolveInclude(relPath, fromDir)
			if err != nil {
				return "", fmt.Errorf("line %d: %w", i+1, err)
			}
			included, err := p.processFile(resolved)
			if err != nil {
				return "", err
			}
			out = append(out, included)
			continue

		case strings.HasPrefix(trimmed, "#define"):
			key, val, err := parseDefine(trimmed)
			if err != nil {
				return "", fmt.Errorf("line %d: %w", i+1, err)
			}
			if active() {
				p.defines[key] = val
			}
			continue

		case strings.HasPrefix(trimmed, "#ifndef"):
			key := strings.TrimSpace(strings.TrimPrefix(trimmed, "#ifndef"))
			_, defined := p.defines[key]
			cond := !defined
			stack = append(stack, condFrame{active: cond, taken: cond})
			continue

		case strings.HasPrefix(trimmed, "#if"):
			key, val, hasVal := parseIf(trimmed)
			actual, defined := p.defines[key]
			cond := defined
			if cond && hasVal {
				cond = actual == val
			}
			stack = append(stack, condFrame{active: cond, taken: cond})
			continue

		case trimmed == "#else":
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: #else without matching #if", i+1)
			}
			top := &stack[len(stack)-1]
			top.active = !top.taken
			top.taken = true
			continue

		case trimmed == "#endif":
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: #endif without matching #if", i+1)
			}
			stack = stack[:len(stack)-1]
			continue
		}

		if !active() {
			continue
		}
		out = append(out, line)
	}

	if len(stack) != 0 {
		return "", fmt.Errorf("shader: unterminated #if/#ifndef block")
	}

	result := strings.Join(out, "\n")
	precision := "f32"
	if p.halfFloat {
		precision = "f16"
	}
	result = strings.ReplaceAll(result, "precision_float", precision)

	return result, nil
}

func parseQuoted(directive string) (string, error) {
	start := strings.IndexByte(directive, '"')
	end := strings.LastIndexByte(directive, '"')
	if start < 0 || end <= start {
		return "", fmt.Errorf("malformed directive %q, expected a quoted path", directive)
	}
	return directive[start+1 : end], nil
}

// parseDefine parses "#define KEY" or "#define KEY VAL" or "#define KEY [VAL]".
func parseDefine(directive string) (key string, val string, err error) {
	fields := strings.Fields(strings.TrimPrefix(directive, "#define"))
	if len(fields) == 0 {
		return "", "", fmt.Errorf("malformed #define, expected a key")
	}
	key = fields[0]
	if len(fields) > 1 {
		val = strings.Trim(strings.Join(fields[1:], " "), "[]")
	}
	return key, val, nil
}

// parseIf parses "#if KEY" or "#if KEY VAL" or "#if KEY [VAL]".
func parseIf(directive string) (key string, val string, hasVal bool) {
	fields := strings.Fields(strings.TrimPrefix(directive, "#if"))
	if len(fields) == 0 {
		return "", "", false
	}
	key = fields[0]
	if len(fields) > 1 {
		val = strings.Trim(strings.Join(fields[1:], " "), "[]")
		hasVal = true
	}
	return key, val, hasVal
}
