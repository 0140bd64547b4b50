package genome

import (
	"sort"
	"strconv"
	"strings"
)

// DefaultBuild is the genome build served when none is configured.
const DefaultBuild = "hg38"

// NormalizeChrom returns the chromosome name without "chr" prefix, upper-cased,
// with the mitochondrial aliases folded into "M".
func NormalizeChrom(chrom string) string {
	c := strings.TrimSpace(chrom)
	if len(c) > 3 && strings.EqualFold(c[:3], "chr") {
		c = c[3:]
	}
	c = strings.ToUpper(c)
	if c == "MT" {
		return "M"
	}
	return c
}

// SameChrom reports whether two chromosome labels name the same chromosome.
func SameChrom(a, b string) bool {
	return NormalizeChrom(a) == NormalizeChrom(b)
}

// ChromAliases returns the stored spellings a normalized chromosome may use.
func ChromAliases(chrom string) []string {
	n := NormalizeChrom(chrom)
	if n == "" {
		return nil
	}
	aliases := []string{n, "chr" + n}
	if n == "M" {
		aliases = append(aliases, "MT", "chrMT")
	}
	return aliases
}

// Approximate hg38 chromosome sizes in base pairs.
var hg38Sizes = map[string]int64{
	"1":  248956422,
	"2":  242193529,
	"3":  198295559,
	"4":  190214555,
	"5":  181538259,
	"6":  170805979,
	"7":  159345973,
	"8":  145138636,
	"9":  138394717,
	"10": 133797422,
	"11": 135086622,
	"12": 133275309,
	"13": 114364328,
	"14": 107043718,
	"15": 101991189,
	"16": 90338345,
	"17": 83257441,
	"18": 80373285,
	"19": 58617616,
	"20": 64444167,
	"21": 46709983,
	"22": 50818468,
	"X":  156040895,
	"Y":  57227415,
	"M":  16569,
}

// ChromosomeSize returns the length of a chromosome for a known build.
func ChromosomeSize(build, chrom string) (int64, bool) {
	switch strings.ToLower(build) {
	case "hg38", "grch38":
		size, ok := hg38Sizes[NormalizeChrom(chrom)]
		return size, ok
	}
	return 0, false
}

// chromRank orders autosomes numerically, then X, Y, M, then everything else.
func chromRank(chrom string) int {
	n := NormalizeChrom(chrom)
	if v, err := strconv.Atoi(n); err == nil {
		return v
	}
	switch n {
	case "X":
		return 99
	case "Y":
		return 100
	case "M":
		return 101
	}
	return 102
}

// SortChromosomes sorts chromosome labels in karyotype order.
func SortChromosomes(chroms []string) {
	sort.SliceStable(chroms, func(i, j int) bool {
		ri, rj := chromRank(chroms[i]), chromRank(chroms[j])
		if ri != rj {
			return ri < rj
		}
		return chroms[i] < chroms[j]
	})
}
