// Package argcon synthesizes IR constants from live host-memory argument
// buffers at kernel invocation time. For each formal parameter of a
// compiled kernel it emits an argument-substitution record into a fresh
// substitution module; a later specialization pass replaces the parameter
// with the record's terminal constant.
package argcon

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"
	"tinygo.org/x/go-llvm"

	"github.com/wahorvat/cuda-quantum/layout"
	"github.com/wahorvat/cuda-quantum/types"
)

// GenPrefix qualifies the symbol of a compiled kernel: a kernel with
// logical name K is looked up as GenPrefix+K in the source module.
const GenPrefix = "__nvqpp__mlirgen__"

// PlatformSettings selects the state-argument materialization strategy.
type PlatformSettings struct {
	IsSimulator bool
	IsRemote    bool
}

// KernelRegistry resolves a prefixed kernel symbol to its formal parameter
// list in the internal type algebra.
type KernelRegistry interface {
	Signature(funcName string) ([]types.Type, bool)
}

// Registry is a map-backed KernelRegistry keyed by prefixed symbol name.
type Registry map[string][]types.Type

func (r Registry) Signature(funcName string) ([]types.Type, bool) {
	sig, ok := r[funcName]
	return sig, ok
}

// Substitution is one argument-substitution record: a private nullary
// function in the substitution module, keyed by parameter index, whose
// entry block holds the emitted constant chain and whose ret operand is
// the constant for that parameter.
type Substitution struct {
	Index int
	Fn    llvm.Value
}

// Converter drives argument materialization for one kernel. The
// substitution module is cumulative: repeated Gen calls append records in
// call order, index-ordered within each call.
type Converter struct {
	Context      llvm.Context
	SourceModule llvm.Module
	SubstModule  llvm.Module

	builder        llvm.Builder
	kernelName     string
	registry       KernelRegistry
	platform       PlatformSettings
	log            *zap.Logger
	layout         *layout.DataLayout
	stateTy        llvm.Type // lazily created named opaque struct
	literalCounter int       // unique names for interned string literals
	genCount       int
	substitutions  []Substitution
}

// NewConverter creates a converter for the given kernel over sourceModule.
// The substitution module is created in the source module's context.
func NewConverter(kernelName string, sourceModule llvm.Module, registry KernelRegistry, platform PlatformSettings) *Converter {
	ctx := sourceModule.Context()
	return &Converter{
		Context:      ctx,
		SourceModule: sourceModule,
		SubstModule:  ctx.NewModule(kernelName + ".subst"),
		builder:      ctx.NewBuilder(),
		kernelName:   kernelName,
		registry:     registry,
		platform:     platform,
		log:          zap.NewNop(),
	}
}

// SetLogger installs a diagnostics logger. Skipped emissions and host-ABI
// oddities are reported here; the success path stays silent.
func (c *Converter) SetLogger(log *zap.Logger) {
	c.log = log
}

func (c *Converter) Substitutions() []Substitution {
	return c.substitutions
}

// GenerateIR returns the textual IR of the substitution module.
func (c *Converter) GenerateIR() string {
	return c.SubstModule.String()
}

// Dispose releases the converter's builder. The modules belong to the
// context and are freed with it.
func (c *Converter) Dispose() {
	c.builder.Dispose()
}

// Gen materializes one constant per (formal type, host pointer) pair and
// appends the resulting substitution records to the substitution module.
// Host buffers are borrowed for the duration of the call. The source
// module is never mutated.
func (c *Converter) Gen(arguments []unsafe.Pointer) error {
	funcName := GenPrefix + c.kernelName
	if fn := c.SourceModule.NamedFunction(funcName); fn.IsNil() {
		return fmt.Errorf("kernel %q: no function %s in source module", c.kernelName, funcName)
	}
	sig, ok := c.registry.Signature(funcName)
	if !ok {
		return fmt.Errorf("kernel %q: no signature registered for %s", c.kernelName, funcName)
	}

	c.layout = layout.New(c.SourceModule.DataLayout())
	defer func() {
		c.layout.Dispose()
		c.layout = nil
	}()

	c.genCount++
	n := len(sig)
	if len(arguments) < n {
		n = len(arguments)
	}
	for i := 0; i < n; i++ {
		argTy := sig[i]
		argPtr := arguments[i]
		if !c.canMaterialize(argTy, argPtr) {
			c.log.Debug("argument substitution skipped",
				zap.Int("index", i),
				zap.String("type", argTy.String()))
			continue
		}
		fn := c.openSubstitution(i, c.substValueType(argTy, argPtr))
		val, ok := c.dispatchSubtype(argTy, argPtr)
		if !ok {
			panic(fmt.Sprintf("argument %d (%s): emission produced no value", i, argTy))
		}
		c.builder.CreateRet(val)
		c.substitutions = append(c.substitutions, Substitution{Index: i, Fn: fn})
	}
	return nil
}

// openSubstitution creates the record function with its fresh entry block
// and points the builder at it.
func (c *Converter) openSubstitution(index int, valueTy llvm.Type) llvm.Value {
	name := fmt.Sprintf("%s.subst%d.arg%d", c.kernelName, c.genCount, index)
	fnTy := llvm.FunctionType(valueTy, nil, false)
	fn := llvm.AddFunction(c.SubstModule, name, fnTy)
	fn.SetLinkage(llvm.PrivateLinkage)
	entry := c.Context.AddBasicBlock(fn, "entry")
	c.builder.SetInsertPointAtEnd(entry)
	return fn
}

// canMaterialize decides, without emitting IR, whether a top-level
// parameter has a substitution at all. Skips here are non-fatal: the
// consumer treats the missing index as "argument retained as-is".
func (c *Converter) canMaterialize(t types.Type, p unsafe.Pointer) bool {
	switch t := t.(type) {
	case types.Int:
		switch t.Width {
		case 1, 8, 16, 32, 64:
			return true
		}
		return false
	case types.Float:
		return true
	case types.Complex:
		return t.Elem.Width == 32 || t.Elem.Width == 64
	case types.Charspan:
		return true
	case types.Ptr:
		return t.Elem.Kind() == types.StateKind
	case types.Stdvec:
		begin, end := readVecHeader(p)
		return end != begin
	case types.Array:
		return t.Size != types.UnknownSize
	case types.Struct:
		return len(t.Members) > 0
	case types.Tuple:
		return len(t.Members) > 0
	default:
		return false
	}
}
