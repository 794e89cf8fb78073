package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ProposalScanner/internal/config"
	"ProposalScanner/internal/mailarchive"
	"ProposalScanner/internal/mentions"
	"ProposalScanner/internal/ports"
	"ProposalScanner/internal/report"
	"ProposalScanner/internal/scheme"
	"ProposalScanner/internal/storage"
	"ProposalScanner/internal/wiki"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Schemes    *scheme.Registry
	Downloader *mailarchive.Downloader
	Harvester  *wiki.Harvester
	Cache      *storage.FileCache
	Repository ports.ProposalRepository
	Renderer   *report.Renderer
	Logger     *slog.Logger
}

// Pipeline implements the proposal-tracking workflows: full initialization,
// incremental update, and report rendering.
type Pipeline struct {
	cfg        config.Config
	schemes    *scheme.Registry
	downloader *mailarchive.Downloader
	harvester  *wiki.Harvester
	cache      *storage.FileCache
	repository ports.ProposalRepository
	renderer   *report.Renderer
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(cfg config.Config, deps PipelineDeps) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		schemes:    deps.Schemes,
		downloader: deps.Downloader,
		harvester:  deps.Harvester,
		cache:      deps.Cache,
		repository: deps.Repository,
		renderer:   deps.Renderer,
		logger:     deps.Logger,
	}
}

// Init builds all data caches from scratch for every configured project: a
// full wiki walk plus the whole mail-archive window.
func (p *Pipeline) Init(ctx context.Context) error {
	for _, project := range p.cfg.Projects {
		p.info("initializing project caches", "project", project.Name)

		if err := p.HarvestWiki(ctx, project, true); err != nil {
			return fmt.Errorf("project %s: %w", project.Name, err)
		}

		sch, err := p.schemes.Resolve(project.Scheme)
		if err != nil {
			return fmt.Errorf("project %s: %w", project.Name, err)
		}

		units, err := p.downloader.DownloadWindow(ctx, sch, project.MailingList,
			p.cfg.Mail.DaysBack, project.ArchiveDir, p.cfg.Mail.Overwrite)
		if err != nil {
			return fmt.Errorf("project %s: download archives: %w", project.Name, err)
		}

		store, err := p.ProcessUnits(ctx, project, units, true)
		if err != nil {
			return fmt.Errorf("project %s: %w", project.Name, err)
		}
		if err := p.cache.SaveStore(p.storePath(project), store); err != nil {
			return fmt.Errorf("project %s: %w", project.Name, err)
		}
	}

	return nil
}

// Update refreshes the caches incrementally: newly discovered proposals are
// added to the registry without touching known records, and only the newest
// monthly archive is re-downloaded and reprocessed before merging into the
// persisted store.
func (p *Pipeline) Update(ctx context.Context) error {
	for _, project := range p.cfg.Projects {
		p.info("updating project caches", "project", project.Name)

		if err := p.HarvestWiki(ctx, project, false); err != nil {
			return fmt.Errorf("project %s: %w", project.Name, err)
		}

		sch, err := p.schemes.Resolve(project.Scheme)
		if err != nil {
			return fmt.Errorf("project %s: %w", project.Name, err)
		}

		// The current month's archive is still growing; re-download it.
		units, err := p.downloader.DownloadWindow(ctx, sch, project.MailingList,
			1, project.ArchiveDir, true)
		if err != nil {
			return fmt.Errorf("project %s: download newest archive: %w", project.Name, err)
		}

		fresh, err := p.ProcessUnits(ctx, project, units, true)
		if err != nil {
			return fmt.Errorf("project %s: %w", project.Name, err)
		}

		store, err := p.cache.LoadStore(p.storePath(project))
		if err != nil {
			store = mentions.NewStore()
		}
		if err := store.Merge(fresh); err != nil {
			return fmt.Errorf("project %s: merge fresh mentions: %w", project.Name, err)
		}
		if err := p.cache.SaveStore(p.storePath(project), store); err != nil {
			return fmt.Errorf("project %s: %w", project.Name, err)
		}
	}

	return nil
}

// DownloadArchives fetches the monthly archives covering the last daysBack
// days for every configured project, without processing them.
func (p *Pipeline) DownloadArchives(ctx context.Context, daysBack int, overwrite bool) error {
	for _, project := range p.cfg.Projects {
		sch, err := p.schemes.Resolve(project.Scheme)
		if err != nil {
			return fmt.Errorf("project %s: %w", project.Name, err)
		}
		if _, err := p.downloader.DownloadWindow(ctx, sch, project.MailingList,
			daysBack, project.ArchiveDir, overwrite); err != nil {
			return fmt.Errorf("project %s: download archives: %w", project.Name, err)
		}
	}
	return nil
}

// HarvestWiki walks the project's proposal page tree and merges the
// discovered records into the persisted registry. With rebuild set, the
// existing registry cache is discarded first.
func (p *Pipeline) HarvestWiki(ctx context.Context, project config.ProjectConfig, rebuild bool) error {
	sch, err := p.schemes.Resolve(project.Scheme)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(project.CacheDir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	registry := wiki.NewRegistry()
	if !rebuild {
		if loaded, err := p.cache.LoadRegistry(p.registryPath(project)); err == nil {
			registry = loaded
		}
	}

	records, err := p.harvester.Harvest(ctx, sch, p.cfg.Wiki.Chunk)
	if err != nil {
		return fmt.Errorf("harvest wiki: %w", err)
	}

	added := registry.Merge(records, p.logger)
	p.info("merged wiki records", "project", project.Name, "added", added, "known", registry.Len())

	if err := p.cache.SaveRegistry(p.registryPath(project), registry); err != nil {
		return err
	}

	if p.repository != nil {
		if err := p.repository.SaveRecords(ctx, registry.Records()); err != nil {
			return fmt.Errorf("persist registry: %w", err)
		}
	}

	return nil
}

// ProcessUnits scans the archive units, reusing per-unit caches unless
// overwriteCache is set, and folds all mentions into a fresh store. Callers
// decide whether that store replaces or merges into the persisted one.
func (p *Pipeline) ProcessUnits(ctx context.Context, project config.ProjectConfig, units []mailarchive.Unit, overwriteCache bool) (*mentions.Store, error) {
	sch, err := p.schemes.Resolve(project.Scheme)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(project.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	scanner := mailarchive.NewScanner(sch, p.logger)
	store := mentions.NewStore()

	for _, unit := range units {
		cachePath := p.unitCachePath(project, unit)

		if p.cache.Exists(cachePath) && !overwriteCache {
			p.debug("loading mentions from cache", "cache", cachePath)
			loaded, err := p.cache.LoadMentions(cachePath)
			if err != nil {
				return nil, err
			}
			if err := store.RecordAll(loaded); err != nil {
				return nil, err
			}
			continue
		}

		p.info("processing archive file", "file", unit.Path)
		scanned, err := scanner.ScanUnit(unit)
		if err != nil {
			p.warn("error processing archive file", "file", unit.Path, "error", err)
			continue
		}

		if err := p.cache.SaveMentions(cachePath, scanned); err != nil {
			return nil, err
		}
		if err := store.RecordAll(scanned); err != nil {
			return nil, err
		}

		if p.repository != nil {
			if err := p.repository.SaveMentions(ctx, scanned); err != nil {
				return nil, fmt.Errorf("persist mentions: %w", err)
			}
		}
	}

	return store, nil
}

// ProcessDirectory scans every mbox file found in the project's archive
// directory and persists the combined store.
func (p *Pipeline) ProcessDirectory(ctx context.Context, project config.ProjectConfig, overwriteCache bool) (*mentions.Store, error) {
	entries, err := os.ReadDir(project.ArchiveDir)
	if err != nil {
		return nil, fmt.Errorf("read archive dir %s: %w", project.ArchiveDir, err)
	}

	var units []mailarchive.Unit
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.Contains(entry.Name(), "mbox") {
			p.debug("skipping non-mbox file", "file", entry.Name())
			continue
		}
		unit, err := mailarchive.UnitFromPath(filepath.Join(project.ArchiveDir, entry.Name()))
		if err != nil {
			p.warn("skipping archive file", "file", entry.Name(), "error", err)
			continue
		}
		units = append(units, unit)
	}

	store, err := p.ProcessUnits(ctx, project, units, overwriteCache)
	if err != nil {
		return nil, err
	}
	if err := p.cache.SaveStore(p.storePath(project), store); err != nil {
		return nil, err
	}
	return store, nil
}

// Report renders the standalone status page for every configured project.
func (p *Pipeline) Report(ctx context.Context, now time.Time) error {
	for _, project := range p.cfg.Projects {
		sch, err := p.schemes.Resolve(project.Scheme)
		if err != nil {
			return fmt.Errorf("project %s: %w", project.Name, err)
		}

		registry, err := p.cache.LoadRegistry(p.registryPath(project))
		if err != nil {
			return fmt.Errorf("project %s: %w", project.Name, err)
		}
		store, err := p.cache.LoadStore(p.storePath(project))
		if err != nil {
			return fmt.Errorf("project %s: %w", project.Name, err)
		}

		data := report.BuildPage(sch, registry, store, now)

		outPath := p.reportPath(project)
		file, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create report %s: %w", outPath, err)
		}
		if err := p.renderer.Render(file, data); err != nil {
			file.Close()
			return fmt.Errorf("project %s: %w", project.Name, err)
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("close report %s: %w", outPath, err)
		}

		p.info("rendered status page", "project", project.Name, "file", outPath, "proposals", len(data.Rows))
	}

	return nil
}

func (p *Pipeline) registryPath(project config.ProjectConfig) string {
	return filepath.Join(project.CacheDir, project.Name+"_wiki_cache.json")
}

func (p *Pipeline) storePath(project config.ProjectConfig) string {
	return filepath.Join(project.CacheDir, project.Name+"_mentions.json")
}

func (p *Pipeline) unitCachePath(project config.ProjectConfig, unit mailarchive.Unit) string {
	return filepath.Join(project.CacheDir, filepath.Base(unit.Path)+storage.CacheSuffix)
}

func (p *Pipeline) reportPath(project config.ProjectConfig) string {
	if len(p.cfg.Projects) == 1 {
		return p.cfg.Report.OutputFile
	}
	return project.Name + "_" + p.cfg.Report.OutputFile
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
