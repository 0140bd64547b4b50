package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uconn-ofc/sv-browser/internal/genome"
	"github.com/uconn-ofc/sv-browser/internal/locus"
	"github.com/uconn-ofc/sv-browser/internal/output"
	"github.com/uconn-ofc/sv-browser/internal/track"
)

func newLocusCmd() *cobra.Command {
	var (
		gene      string
		chrom     string
		familyID  string
		chromLast bool
		showTrack bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "locus",
		Short: "Resolve the viewer region for a gene and chromosome selection",
		Long: `Resolve the region the genome viewer shows for a selection.

The chromosome is selected before the gene unless --chrom-last is given.
With --family the region is padded and the family's member tracks are listed.`,
		Example: `  sv-browser locus --gene IRF6
  sv-browser locus --chrom 4 --gene IRF6 --family F001
  sv-browser locus --gene IRF6 --chrom 4 --chrom-last`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			s := locus.NewSession("cli")
			if !chromLast && chrom != "" {
				s.SelectChromosome(chrom)
			}
			if gene != "" {
				s.SelectGene(locus.GeneRef{ID: gene})
			}
			if chromLast && chrom != "" {
				s.SelectChromosome(chrom)
			}

			scope := track.Population()
			if cmd.Flags().Changed("family") {
				scope = track.FamilyScope(familyID)
			}

			v, err := a.browser.View(cmd.Context(), s, scope)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), v)
			}

			out := cmd.OutOrStdout()
			if v.Locus != "" {
				fmt.Fprintln(out, v.Locus)
			}
			if v.Message != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), v.Message)
			}
			if v.ChromosomeChanged {
				fmt.Fprintf(cmd.ErrOrStderr(), "chromosome changed to %s\n", v.Region.Chrom)
			}
			if showTrack && v.Ready() {
				return output.NewTabWriter(out).WriteTracks(v.Tracks)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&gene, "gene", "", "Selected gene identifier")
	flags.StringVar(&chrom, "chrom", "", "Selected chromosome")
	flags.StringVar(&familyID, "family", "", "Family scope")
	flags.BoolVar(&chromLast, "chrom-last", false, "Select the chromosome after the gene")
	flags.BoolVar(&showTrack, "tracks", false, "List the tracks of the view")
	flags.BoolVar(&asJSON, "json", false, "Print the full view as JSON")
	return cmd
}

func newTracksCmd() *cobra.Command {
	var (
		chrom     string
		region    string
		build     string
		familyID  string
		reference bool
		features  bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "tracks",
		Short: "Assemble the tracks of a chromosome",
		Long: `Assemble the tracks of a chromosome.

The chromosome is given by --chrom or by a --region such as 1:209,700,000-209,900,000.
With --features and a ranged --region only features overlapping the region are listed.`,
		Example: `  sv-browser tracks --chrom 1
  sv-browser tracks --chrom 1 --family F002 --features
  sv-browser tracks --region 1:209700000-209900000 --features
  sv-browser tracks --chrom 1 --reference`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var loc genome.Locus
			if region != "" {
				var err error
				if loc, err = genome.ParseLocus(region); err != nil {
					return usageError{err}
				}
				if chrom != "" && !genome.SameChrom(chrom, loc.Chrom) {
					return usageError{fmt.Errorf("--chrom %s does not match --region %s", chrom, region)}
				}
				chrom = loc.Chrom
			}
			if chrom == "" {
				return usageError{fmt.Errorf("--chrom or --region is required")}
			}
			scope := track.Population()
			if cmd.Flags().Changed("family") {
				var err error
				if scope, err = track.ParseScope("family", familyID); err != nil {
					return usageError{err}
				}
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var tracks []track.Track
			if reference {
				tracks, err = a.assembler.ReferenceTracks(cmd.Context(), chrom, build)
			} else {
				tracks, err = a.assembler.AssembleTracks(cmd.Context(), chrom, build, scope)
			}
			if err != nil {
				return err
			}
			tracks = track.Within(tracks, loc)

			switch {
			case asJSON:
				return printJSON(cmd.OutOrStdout(), tracks)
			case features:
				return output.NewTabWriter(cmd.OutOrStdout()).WriteFeatures(tracks)
			default:
				return output.NewTabWriter(cmd.OutOrStdout()).WriteTracks(tracks)
			}
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&chrom, "chrom", "", "Chromosome")
	flags.StringVar(&region, "region", "", "Region as chrom or chrom:start-end")
	flags.StringVar(&build, "build", "", "Genome build (default: genome.build)")
	flags.StringVar(&familyID, "family", "", "Family scope instead of the population")
	flags.BoolVar(&reference, "reference", false, "Only the reference tracks of the build")
	flags.BoolVar(&features, "features", false, "List every feature instead of a track summary")
	flags.BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}
