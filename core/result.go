package core

import (
	"path"
	"sort"
	"time"

	"github.com/src-d/enry/v2"

	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// otherLanguage labels files whose language cannot be detected from the name.
const otherLanguage = "Other"

// resultBuilder collects matched commits into an AnalysisResult.
type resultBuilder struct {
	commits int
	first   *schema.CommitRecord // oldest matched, the final element of the stream
	last    *schema.CommitRecord // newest matched, element 0 of the stream
}

// observe records a matched commit. Commits arrive newest first.
func (b *resultBuilder) observe(c schema.CommitRecord) {
	if b.commits == 0 {
		last := c
		b.last = &last
	}
	first := c
	b.first = &first
	b.commits++
}

// build assembles the result. Both dates are rendered in the local time zone, the
// same zone the date window bounds use, so first never falls after last.
func (b *resultBuilder) build(author, repository string, branch BranchResolution, totals schema.ChangeStats, files *schema.FileStats) *schema.AnalysisResult {
	res := &schema.AnalysisResult{
		Author:             author,
		Repository:         repository,
		Branch:             branch.Branch.Name,
		RequestedBranch:    branch.Requested,
		BranchFallback:     branch.Fallback,
		TotalCommits:       b.commits,
		LinesAdded:         totals.Insertions,
		LinesDeleted:       totals.Deletions,
		TotalLinesModified: totals.Total(),
		FileStats:          files,
		Languages:          languageBreakdown(files),
	}
	if b.commits > 0 {
		firstDate := b.first.When.In(time.Local).Format(schema.DateLayout)
		lastDate := b.last.When.In(time.Local).Format(schema.DateLayout)
		res.FirstCommitDate = &firstDate
		res.LastCommitDate = &lastDate
	}
	return res
}

// languageBreakdown groups file stats by detected language, largest total first.
func languageBreakdown(files *schema.FileStats) []schema.LanguageStat {
	if files.Len() == 0 {
		return nil
	}
	index := make(map[string]int)
	var langs []schema.LanguageStat
	for _, fs := range files.Entries() {
		lang := enry.GetLanguage(path.Base(fs.Path), nil)
		if lang == "" {
			lang = otherLanguage
		}
		i, ok := index[lang]
		if !ok {
			i = len(langs)
			index[lang] = i
			langs = append(langs, schema.LanguageStat{Language: lang})
		}
		langs[i].Files++
		langs[i].Insertions += fs.Insertions
		langs[i].Deletions += fs.Deletions
	}
	sort.SliceStable(langs, func(i, j int) bool {
		return langs[i].Total() > langs[j].Total()
	})
	return langs
}
