package cpu

import (
	"fmt"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// Features describes the host CPU as seen by the backend.
type Features struct {
	Brand        string
	LogicalCores int
	AVX2         bool
	AVX512       bool
	FMA          bool
	Workers      int
}

// Features reports the CPU brand, SIMD extensions and the worker count used
// by the element-wise kernels.
func (cpu *CPUBackend) Features() Features {
	return Features{
		Brand:        cpuid.CPU.BrandName,
		LogicalCores: cpuid.CPU.LogicalCores,
		AVX2:         cpuid.CPU.Supports(cpuid.AVX2),
		AVX512:       cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512DQ),
		FMA:          cpuid.CPU.Supports(cpuid.FMA3),
		Workers:      cpu.parallel.NumWorkers,
	}
}

// String formats the features for logs.
func (f Features) String() string {
	var ext []string
	if f.AVX2 {
		ext = append(ext, "avx2")
	}
	if f.AVX512 {
		ext = append(ext, "avx512")
	}
	if f.FMA {
		ext = append(ext, "fma")
	}
	brand := f.Brand
	if brand == "" {
		brand = "unknown cpu"
	}
	return fmt.Sprintf("%s (%d cores, %d workers) [%s]", brand, f.LogicalCores, f.Workers, strings.Join(ext, ","))
}
