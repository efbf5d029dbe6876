package pipeline_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/arch-sim/simhound/models"
	"github.com/arch-sim/simhound/pipeline"
)

func writeGoFile(dir, name, content string) string {
	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
	return path
}

const fnA = `package demo

func Add(a int, b int) int {
	sum := a + b
	if sum < 0 {
		sum = 0
	}
	return sum
}
`

const fnB = `package demo

func Sum(x int, y int) int {
	total := x + y
	if total < 0 {
		total = 0
	}
	return total
}
`

const fnUnrelated = `package demo

func Greet(name string) string {
	greeting := "hello " + name
	greeting = strings.ToUpper(greeting)
	return greeting
}
`

var _ = Describe("pipeline.Orchestrator.Run", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("groups two structurally identical functions renamed across files", func() {
		a := writeGoFile(dir, "a.go", fnA)
		b := writeGoFile(dir, "b.go", fnB)

		orch := pipeline.New(models.DefaultConfig())
		result, err := orch.Run([]string{a, b})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.FailedFiles).To(BeEmpty())

		Expect(result.SimilarGroups).NotTo(BeEmpty())
		found := false
		for _, g := range result.SimilarGroups {
			if len(g.Regions) == 2 {
				paths := map[string]bool{}
				for _, r := range g.Regions {
					paths[r.Path] = true
				}
				if paths[a] && paths[b] {
					found = true
				}
			}
		}
		Expect(found).To(BeTrue(), "expected a group spanning a.go and b.go")
	})

	It("does not group a function with a structurally unrelated one", func() {
		a := writeGoFile(dir, "a.go", fnA)
		u := writeGoFile(dir, "u.go", fnUnrelated)

		orch := pipeline.New(models.DefaultConfig())
		result, err := orch.Run([]string{a, u})
		Expect(err).NotTo(HaveOccurred())

		for _, g := range result.SimilarGroups {
			paths := map[string]bool{}
			for _, r := range g.Regions {
				paths[r.Path] = true
			}
			Expect(paths[a] && paths[u]).To(BeFalse())
		}
	})

	It("records an unreadable file in FailedFiles rather than aborting the run", func() {
		a := writeGoFile(dir, "a.go", fnA)
		missing := filepath.Join(dir, "missing.go")

		orch := pipeline.New(models.DefaultConfig())
		result, err := orch.Run([]string{a, missing})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.FailedFiles).To(HaveKey(missing))
	})
})
