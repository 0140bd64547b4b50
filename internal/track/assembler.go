package track

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/uconn-ofc/sv-browser/internal/family"
	"github.com/uconn-ofc/sv-browser/internal/genome"
	"github.com/uconn-ofc/sv-browser/internal/refdata"
)

var (
	// ErrMissingReference reports a genome build configured without a background reference track.
	ErrMissingReference = errors.New("no reference tracks configured")
	// ErrUnknownBuild is returned for a genome build the assembler was not configured with.
	ErrUnknownBuild = errors.New("unknown genome build")
	// ErrNoChromosome is returned when tracks are requested without a chromosome.
	ErrNoChromosome = errors.New("no chromosome selected")
)

// Store is the subset of the reference store the assembler reads.
type Store interface {
	GenesOnChromosome(ctx context.Context, chrom string) ([]genome.Gene, error)
	BackgroundVariants(ctx context.Context, chrom string) ([]refdata.BackgroundVariant, error)
	RoleVariants(ctx context.Context, role refdata.Role, chrom string) ([]refdata.RoleVariant, error)
	SampleVariants(ctx context.Context, sample, chrom string) ([]refdata.Variant, error)
}

// FamilyResolver resolves the members of a family.
type FamilyResolver interface {
	GetFamilyMembers(ctx context.Context, familyID string) (family.Members, error)
}

// DefaultWorkers bounds concurrent per-track lookups.
const DefaultWorkers = 4

// Config lists the reference sources of every genome build, in display order.
type Config struct {
	DefaultBuild string
	Reference    map[string][]string
	Workers      int
}

// DefaultReference is the reference track list of hg38.
func DefaultReference() []string {
	return []string{string(KindBackground), string(KindGenes)}
}

// DefaultConfig configures hg38 with the background and gene tracks.
func DefaultConfig() Config {
	return Config{
		DefaultBuild: genome.DefaultBuild,
		Reference:    map[string][]string{genome.DefaultBuild: DefaultReference()},
		Workers:      DefaultWorkers,
	}
}

// Assembler builds the ordered track list for a chromosome and scope.
type Assembler struct {
	store        Store
	families     FamilyResolver
	builds       map[string][]Source
	defaultBuild string
	workers      int
	logger       *zap.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger for failed track lookups.
func WithLogger(l *zap.Logger) Option {
	return func(a *Assembler) { a.logger = l }
}

// NewAssembler validates cfg and creates an Assembler.
// Every build must list a background source; it is always placed first.
func NewAssembler(store Store, families FamilyResolver, cfg Config, opts ...Option) (*Assembler, error) {
	if len(cfg.Reference) == 0 {
		return nil, ErrMissingReference
	}

	a := &Assembler{
		store:        store,
		families:     families,
		builds:       make(map[string][]Source, len(cfg.Reference)),
		defaultBuild: normalizeBuild(cfg.DefaultBuild),
		workers:      cfg.Workers,
		logger:       zap.NewNop(),
	}
	if a.defaultBuild == "" {
		a.defaultBuild = genome.DefaultBuild
	}
	if a.workers <= 0 {
		a.workers = DefaultWorkers
	}
	for _, opt := range opts {
		opt(a)
	}

	for build, names := range cfg.Reference {
		sources, err := buildSources(names, store)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", build, err)
		}
		a.builds[normalizeBuild(build)] = sources
	}
	if _, ok := a.builds[a.defaultBuild]; !ok {
		return nil, fmt.Errorf("default build %s: %w", a.defaultBuild, ErrMissingReference)
	}
	return a, nil
}

func buildSources(names []string, store Store) ([]Source, error) {
	var sources []Source
	seen := make(map[string]bool)
	hasBackground := false
	for _, name := range names {
		src, err := newSource(name, store)
		if err != nil {
			return nil, err
		}
		if seen[src.Name()] {
			continue
		}
		seen[src.Name()] = true
		if src.Kind() == KindBackground {
			hasBackground = true
		}
		sources = append(sources, src)
	}
	if !hasBackground {
		return nil, fmt.Errorf("%w: background source required", ErrMissingReference)
	}
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Kind() == KindBackground && sources[j].Kind() != KindBackground
	})
	return sources, nil
}

func normalizeBuild(build string) string {
	return strings.ToLower(strings.TrimSpace(build))
}

// DefaultBuild returns the build used when a request names none.
func (a *Assembler) DefaultBuild() string {
	return a.defaultBuild
}

// Builds returns the configured genome builds in sorted order.
func (a *Assembler) Builds() []string {
	builds := make([]string, 0, len(a.builds))
	for b := range a.builds {
		builds = append(builds, b)
	}
	sort.Strings(builds)
	return builds
}

// ReferenceTracks returns only the reference tracks of a build for chrom.
func (a *Assembler) ReferenceTracks(ctx context.Context, chrom, build string) ([]Track, error) {
	req, sources, err := a.prepare(ctx, chrom, build)
	if err != nil {
		return nil, err
	}
	return a.referenceTracks(ctx, req, sources), nil
}

// AssembleTracks returns the reference tracks of the build followed by the
// cohort tracks of scope. Lookup failures of individual tracks are logged and
// leave that track without features. A family without members gets only the
// reference tracks.
func (a *Assembler) AssembleTracks(ctx context.Context, chrom, build string, scope Scope) ([]Track, error) {
	req, sources, err := a.prepare(ctx, chrom, build)
	if err != nil {
		return nil, err
	}
	tracks := a.referenceTracks(ctx, req, sources)

	if !scope.IsFamily() {
		tracks = append(tracks, a.roleTracks(ctx, req)...)
		a.logger.Debug("assembled tracks", zap.String("chrom", chrom), zap.String("scope", scope.String()), zap.Int("tracks", len(tracks)))
		return tracks, nil
	}

	members, err := a.families.GetFamilyMembers(ctx, scope.FamilyID())
	if errors.Is(err, refdata.ErrNotFound) {
		a.logger.Debug("family has no members", zap.String("family", scope.FamilyID()))
		return tracks, nil
	}
	if err != nil {
		return nil, fmt.Errorf("assemble tracks for family %s: %w", scope.FamilyID(), err)
	}
	tracks = append(tracks, a.memberTracks(ctx, req, members)...)
	a.logger.Debug("assembled tracks", zap.String("chrom", chrom), zap.String("scope", scope.String()), zap.Int("tracks", len(tracks)))
	return tracks, nil
}

func (a *Assembler) prepare(ctx context.Context, chrom, build string) (Request, []Source, error) {
	chrom = strings.TrimSpace(chrom)
	if genome.NormalizeChrom(chrom) == "" {
		return Request{}, nil, ErrNoChromosome
	}
	b := normalizeBuild(build)
	if b == "" {
		b = a.defaultBuild
	}
	sources, ok := a.builds[b]
	if !ok {
		return Request{}, nil, fmt.Errorf("%w: %s", ErrUnknownBuild, build)
	}

	req := Request{Chrom: chrom, Build: b}
	genes, err := a.store.GenesOnChromosome(ctx, chrom)
	if err != nil {
		a.logger.Warn("gene lookup failed", zap.String("chrom", chrom), zap.Error(err))
	} else {
		req.Genes = genome.BuildGeneTree(genes)
	}
	return req, sources, nil
}

// job produces one track; fallback is used when build fails.
type job struct {
	fallback Track
	build    func(ctx context.Context) (Track, error)
}

// run executes jobs on a bounded pool and returns their tracks in job order.
func (a *Assembler) run(ctx context.Context, jobs []job) []Track {
	out := make([]Track, len(jobs))
	var g errgroup.Group
	g.SetLimit(a.workers)
	for i, j := range jobs {
		g.Go(func() error {
			t, err := j.build(ctx)
			if err != nil {
				a.logger.Warn("track lookup failed", zap.String("track", j.fallback.Name), zap.Error(err))
				t = j.fallback
			}
			out[i] = t
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (a *Assembler) referenceTracks(ctx context.Context, req Request, sources []Source) []Track {
	jobs := make([]job, len(sources))
	for i, src := range sources {
		jobs[i] = job{
			fallback: src.Empty(req),
			build:    func(ctx context.Context) (Track, error) { return src.Build(ctx, req) },
		}
	}
	return a.run(ctx, jobs)
}

func (a *Assembler) roleTracks(ctx context.Context, req Request) []Track {
	mothers := newTrack("Mothers (Combined)", KindRole, ColorFemale, aggregateHeight)
	fathers := newTrack("Fathers (Combined)", KindRole, ColorMale, aggregateHeight)
	children := newTrack("Children (Combined)", KindRole, ColorChild, aggregateHeight)

	return a.run(ctx, []job{
		{mothers, a.parentRole(req, refdata.RoleMother, mothers)},
		{fathers, a.parentRole(req, refdata.RoleFather, fathers)},
		{children, func(ctx context.Context) (Track, error) {
			rows, err := a.store.RoleVariants(ctx, refdata.RoleChild, req.Chrom)
			if err != nil {
				return Track{}, fmt.Errorf("child variants: %w", err)
			}
			agg := newAggregator()
			for _, v := range rows {
				ag := agg.add(v.Variant)
				if v.Affected {
					ag.notes.add("Affected")
				}
				if v.Proband {
					ag.notes.add("Proband")
				}
			}
			t := children
			t.Features = agg.features(req.Genes, childStatus)
			return t, nil
		}},
	})
}

func (a *Assembler) parentRole(req Request, role refdata.Role, base Track) func(context.Context) (Track, error) {
	return func(ctx context.Context) (Track, error) {
		rows, err := a.store.RoleVariants(ctx, role, req.Chrom)
		if err != nil {
			return Track{}, fmt.Errorf("%s variants: %w", role, err)
		}
		agg := newAggregator()
		for _, v := range rows {
			agg.add(v.Variant)
		}
		t := base
		t.Features = agg.features(req.Genes, noExtra)
		return t, nil
	}
}

func (a *Assembler) memberTracks(ctx context.Context, req Request, members family.Members) []Track {
	jobs := make([]job, 0, members.Len())
	for i, p := range members.Parents {
		color := ColorFemale
		if p.IsMale() {
			color = ColorMale
		}
		jobs = append(jobs, a.memberJob(req, p, family.ParentLabel(i, p), color))
	}
	for i, c := range members.Children {
		color := ColorChildFemale
		if c.IsMale() {
			color = ColorChild
		}
		jobs = append(jobs, a.memberJob(req, c, family.ChildLabel(i, c), color))
	}
	return a.run(ctx, jobs)
}

func (a *Assembler) memberJob(req Request, m refdata.Member, label, color string) job {
	base := newTrack(label, KindIndividual, color, individualHeight)
	base.SampleID = m.SampleID
	return job{
		fallback: base,
		build: func(ctx context.Context) (Track, error) {
			rows, err := a.store.SampleVariants(ctx, m.SampleID, req.Chrom)
			if err != nil {
				return Track{}, fmt.Errorf("sample %s variants: %w", m.SampleID, err)
			}
			t := base
			t.Features = make([]Feature, 0, len(rows))
			for _, v := range rows {
				t.Features = append(t.Features, svFeature(v, req.Genes))
			}
			return t, nil
		},
	}
}
