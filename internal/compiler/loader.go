package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/sealint/sealint/internal/model"
)

// LoadMode controls how errors are handled during document loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Program is the loaded model of one on-chain program.
type Program struct {
	Name         string
	Instructions []model.Instruction
	FileCount    int
}

// LoadError represents an error that occurred during document loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants, shared with the CLI's diagnostics.
const (
	ErrCodeGeneric     = "E001" // generic/unknown error
	ErrCodeScanError   = "E002" // directory scan error
	ErrCodeNoFiles     = "E003" // no CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // path not found
	ErrCodeBuildFailed = "E006" // CUE build failed

	ErrCodeNoProgram      = "E101" // no program declared
	ErrCodeManyPrograms   = "E102" // more than one program declared
	ErrCodeNoInstructions = "E103" // program has no instructions
	ErrCodeBadInstruction = "E104" // instruction failed to compile
)

// LoadDir loads and compiles the CUE program-model documents in a
// directory. Exactly one program must be declared across the directory's
// files; its instructions are returned in document declaration order,
// which is the order cross-instruction analysis treats as "earlier".
func LoadDir(dir string, mode LoadMode) (*Program, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("model directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing model directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	return compileProgram(value, len(cueFiles), mode)
}

func compileProgram(value cue.Value, fileCount int, mode LoadMode) (*Program, []error) {
	var errs []error

	programVal := value.LookupPath(cue.ParsePath("program"))
	if !programVal.Exists() {
		return nil, []error{&LoadError{Code: ErrCodeNoProgram, Message: "no program declared"}}
	}

	iter, err := programVal.Fields()
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating programs: %v", err)}}
	}

	var result *Program
	for iter.Next() {
		if result != nil {
			return nil, []error{&LoadError{
				Code:    ErrCodeManyPrograms,
				Message: fmt.Sprintf("multiple programs declared (%s, %s); one program per model", result.Name, iter.Label()),
				Pos:     iter.Value().Pos(),
			}}
		}
		result = &Program{Name: iter.Label(), FileCount: fileCount}

		instVal := iter.Value().LookupPath(cue.ParsePath("instruction"))
		if !instVal.Exists() {
			errs = append(errs, &LoadError{
				Code:    ErrCodeNoInstructions,
				Message: fmt.Sprintf("program %q declares no instructions", result.Name),
				Pos:     iter.Value().Pos(),
			})
			continue
		}

		instIter, iterErr := instVal.Fields()
		if iterErr != nil {
			errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating instructions: %v", iterErr)})
			continue
		}
		for instIter.Next() {
			compiled, compileErr := CompileInstruction(instIter.Value())
			if compileErr != nil {
				errs = append(errs, convertCompileError(compileErr, "instruction."+instIter.Label()))
				if mode == LoadModeFailFast {
					return result, errs
				}
				continue
			}
			result.Instructions = append(result.Instructions, *compiled)
		}
	}

	if result == nil {
		return nil, []error{&LoadError{Code: ErrCodeNoProgram, Message: "no program declared"}}
	}
	if len(result.Instructions) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{
			Code:    ErrCodeNoInstructions,
			Message: fmt.Sprintf("program %q declares no instructions", result.Name),
		})
	}

	return result, errs
}

// findCUEFiles walks the directory and returns all .cue file paths.
func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with
// position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeBadInstruction,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}
