package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"unsafe"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"tinygo.org/x/go-llvm"

	"github.com/wahorvat/cuda-quantum/argcon"
	"github.com/wahorvat/cuda-quantum/draw"
	"github.com/wahorvat/cuda-quantum/trace"
	"github.com/wahorvat/cuda-quantum/types"
)

const targetConfigFile = "qtarget.toml"

// targetConfig is the optional platform profile read from qtarget.toml.
type targetConfig struct {
	Platform struct {
		Simulator bool `toml:"simulator"`
		Remote    bool `toml:"remote"`
	} `toml:"platform"`
	Target struct {
		DataLayout string `toml:"data_layout"`
	} `toml:"target"`
}

// loadTargetConfig reads qtarget.toml from the working directory. A
// missing file defaults to a local simulator.
func loadTargetConfig() targetConfig {
	var cfg targetConfig
	cfg.Platform.Simulator = true
	if _, err := os.Stat(targetConfigFile); err != nil {
		return cfg
	}
	if _, err := toml.DecodeFile(targetConfigFile, &cfg); err != nil {
		fmt.Printf("Error reading %s: %v\n", targetConfigFile, err)
		os.Exit(1)
	}
	return cfg
}

// defaultCacheDir gets env variable CUDAQ_CACHE.
// If it is not set, picks the platform cache location.
func defaultCacheDir() string {
	if env := os.Getenv("CUDAQ_CACHE"); env != "" {
		return env
	}

	homeDir, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LocalAppData"); localAppData != "" {
			return filepath.Join(localAppData, "cuda-quantum")
		}
		return filepath.Join(homeDir, "AppData", "Local", "cuda-quantum")

	case "darwin":
		return filepath.Join(homeDir, "Library", "Caches", "cuda-quantum")

	default: // Linux and others
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			return filepath.Join(xdg, "cuda-quantum")
		}
		return filepath.Join(homeDir, ".cache", "cuda-quantum")
	}
}

func runDraw(path string) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("Error opening trace %s: %v\n", path, err)
		os.Exit(1)
	}
	defer f.Close()

	t, err := trace.Decode(f)
	if err != nil {
		fmt.Printf("Error decoding trace %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Print(draw.Draw(t))
}

// runSynth pushes a demo kernel through the whole bridge: a source module
// with the kernel symbol, a registered signature, live host argument
// buffers, and a substitution module cached on disk.
func runSynth(logger *zap.Logger) {
	cfg := loadTargetConfig()
	platform := argcon.PlatformSettings{
		IsSimulator: cfg.Platform.Simulator,
		IsRemote:    cfg.Platform.Remote,
	}

	ctx := llvm.NewContext()
	defer ctx.Dispose()

	srcMod := ctx.NewModule("demo.src")
	if cfg.Target.DataLayout != "" {
		srcMod.SetDataLayout(cfg.Target.DataLayout)
	}
	kernel := "demo"
	fnTy := llvm.FunctionType(ctx.VoidType(), nil, false)
	llvm.AddFunction(srcMod, argcon.GenPrefix+kernel, fnTy)

	sig := []types.Type{
		types.I32,
		types.F64,
		types.Stdvec{Elem: types.F32},
		types.Charspan{},
	}
	registry := argcon.Registry{argcon.GenPrefix + kernel: sig}

	shots := int32(1000)
	theta := 0.7853981633974483
	amps := []float32{0.5, 0.5, 0.5, 0.5}
	begin := uintptr(unsafe.Pointer(&amps[0]))
	eleSize := unsafe.Sizeof(float32(0))
	header := [3]uintptr{
		begin,
		begin + uintptr(len(amps))*eleSize,
		begin + uintptr(cap(amps))*eleSize,
	}
	name := "bell"

	conv := argcon.NewConverter(kernel, srcMod, registry, platform)
	defer conv.Dispose()
	conv.SetLogger(logger)

	err := conv.Gen([]unsafe.Pointer{
		unsafe.Pointer(&shots),
		unsafe.Pointer(&theta),
		unsafe.Pointer(&header),
		unsafe.Pointer(&name),
	})
	runtime.KeepAlive(amps)
	if err != nil {
		fmt.Printf("Error synthesizing arguments: %v\n", err)
		os.Exit(1)
	}

	ir := conv.GenerateIR()
	fmt.Print(ir)

	path, err := cacheArtifact(defaultCacheDir(), kernel, ir)
	if err != nil {
		fmt.Printf("Error caching artifact: %v\n", err)
		os.Exit(1)
	}
	logger.Info("substitution module cached",
		zap.String("kernel", kernel),
		zap.Int("substitutions", len(conv.Substitutions())),
		zap.String("path", path))
}

func usage() {
	fmt.Println("usage: cuda-quantum draw <trace-file>")
	fmt.Println("       cuda-quantum synth")
	fmt.Println("       cuda-quantum version")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Printf("Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	switch os.Args[1] {
	case "draw":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		runDraw(os.Args[2])
	case "synth":
		runSynth(logger)
	case "version":
		printVersion()
	default:
		usage()
		os.Exit(1)
	}
}
