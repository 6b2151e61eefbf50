package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/goliatone/go-schema-registry/command"
	"github.com/goliatone/go-schema-registry/pkg/schema"
	"github.com/goliatone/go-schema-registry/pkg/types"
	"github.com/goliatone/go-schema-registry/query"
	"github.com/goliatone/go-schema-registry/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newCreateCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := readSchemaFile(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				created := &types.SchemaDocument{}
				if err := svc.Commands().CreateSchema.Execute(cmd.Context(), command.CreateSchemaInput{
					Schema: doc,
					Result: created,
				}); err != nil {
					return err
				}
				return writeYAML(a.out, schema.ToMap(*created))
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "schema document (YAML or JSON, - for stdin)")
	return cmd
}

func newSetCmd(a *app) *cobra.Command {
	var (
		file      string
		revision  int64
		updatedBy string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update a schema version",
		Long:  "Writes the document, creating it when absent. With --revision the write fails when the stored revision has moved on.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := readSchemaFile(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			input := command.SetSchemaInput{
				Schema:    doc,
				UpdatedBy: updatedBy,
				Result:    &types.SchemaDocument{},
			}
			if cmd.Flags().Changed("revision") {
				input.ExpectedRevision = types.RevisionPtr(types.Revision(revision))
			}
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				if err := svc.Commands().SetSchema.Execute(cmd.Context(), input); err != nil {
					return err
				}
				return writeYAML(a.out, schema.ToMap(*input.Result))
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "schema document (YAML or JSON, - for stdin)")
	cmd.Flags().Int64Var(&revision, "revision", 0, "expected current revision")
	cmd.Flags().StringVar(&updatedBy, "updated-by", "", "actor recorded on the write")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "get [namespace version]",
		Short: "Show a schema by id or by namespace and version",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := query.SchemaDetailInput{}
			switch {
			case id != "":
				parsed, err := uuid.Parse(id)
				if err != nil {
					return argsError("invalid id %q", id)
				}
				input.SchemaID = parsed
			case len(args) == 2:
				input.Namespace, input.Version = args[0], args[1]
			default:
				return argsError("pass --id or a namespace and version")
			}
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				doc, err := svc.Queries().SchemaDetail.Query(cmd.Context(), input)
				if err != nil {
					return err
				}
				return writeYAML(a.out, schema.ToMap(*doc))
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "schema id")
	return cmd
}

func newVersionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "versions <namespace>",
		Short: "List every version registered under a namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				versions, err := svc.Queries().NamespaceVersions.Query(cmd.Context(), query.NamespaceVersionsInput{Namespace: args[0]})
				if err != nil {
					return err
				}
				sort.Slice(versions, func(i, j int) bool {
					return schema.CompareVersions(versions[i], versions[j]) < 0
				})
				for _, v := range versions {
					fmt.Fprintln(a.out, v)
				}
				return nil
			})
		},
	}
}

func newLatestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "latest <namespace>",
		Short: "Print the highest version of a namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				latest, err := svc.Queries().LatestVersion.Query(cmd.Context(), query.LatestVersionInput{Namespace: args[0]})
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, latest)
				return nil
			})
		},
	}
}

func newNamespacesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "namespaces",
		Short: "Count versions per namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				summary, err := svc.Queries().NamespaceSummary.Query(cmd.Context(), query.NamespaceSummaryInput{})
				if err != nil {
					return err
				}
				names := make([]string, 0, len(summary))
				for name := range summary {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(a.out, "%s\t%d\n", name, summary[name])
				}
				return nil
			})
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	var byKey bool
	cmd := &cobra.Command{
		Use:   "delete <id>... | delete --key <namespace> <version>",
		Short: "Delete schemas by id or by namespace and version",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if byKey {
				if len(args) != 2 {
					return argsError("--key takes a namespace and a version")
				}
				return a.withService(cmd.Context(), func(svc *service.Service) error {
					return deleteOne(cmd, a, svc, command.DeleteSchemaInput{Namespace: args[0], Version: args[1]})
				})
			}
			ids := make([]uuid.UUID, 0, len(args))
			for _, arg := range args {
				id, err := uuid.Parse(arg)
				if err != nil {
					return argsError("invalid id %q", arg)
				}
				ids = append(ids, id)
			}
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				if len(ids) == 1 {
					return deleteOne(cmd, a, svc, command.DeleteSchemaInput{SchemaID: ids[0]})
				}
				result := &types.BulkDeleteResult{}
				if err := svc.Commands().DeleteSchemas.Execute(cmd.Context(), command.DeleteSchemasInput{SchemaIDs: ids, Result: result}); err != nil {
					return err
				}
				return writeYAML(a.out, map[string]any{"deleted": idStrings(result.Deleted), "missing": idStrings(result.Missing)})
			})
		},
	}
	cmd.Flags().BoolVar(&byKey, "key", false, "address the schema by namespace and version")
	return cmd
}

func deleteOne(cmd *cobra.Command, a *app, svc *service.Service, input command.DeleteSchemaInput) error {
	result := &types.DeleteResult{}
	input.Result = result
	if err := svc.Commands().DeleteSchema.Execute(cmd.Context(), input); err != nil {
		return err
	}
	return writeYAML(a.out, map[string]any{"deleted": idStrings(deletedIDs(*result)), "missing": idStrings(missingIDs(*result))})
}

func newTypeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "type <namespace> <version> <type>",
		Short: "Show one type definition of a schema",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				def, err := svc.Queries().SchemaType.Query(cmd.Context(), query.SchemaTypeInput{
					Namespace: args[0],
					Version:   args[1],
					TypeName:  args[2],
				})
				if err != nil {
					return err
				}
				return writeYAML(a.out, map[string]any(def))
			})
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	var page types.Page
	cmd := &cobra.Command{
		Use:   "search <field> <value>",
		Short: "Page through schemas whose field equals value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				res, err := svc.Queries().FieldSearch.Query(cmd.Context(), query.FieldSearchInput{
					Field: args[0],
					Value: args[1],
					Page:  page,
				})
				if err != nil {
					return err
				}
				hits := make([]map[string]any, 0, len(res.Schemas))
				for _, doc := range res.Schemas {
					hits = append(hits, schema.ToMap(doc))
				}
				return writeYAML(a.out, map[string]any{"total": res.Total, "schemas": hits})
			})
		},
	}
	cmd.Flags().IntVar(&page.Offset, "offset", 0, "first match to return")
	cmd.Flags().IntVar(&page.Size, "size", 0, "page size (0 uses the store default)")
	return cmd
}

func readSchemaFile(stdin io.Reader, path string) (types.SchemaDocument, error) {
	var (
		raw []byte
		err error
	)
	if path == "" || path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return types.SchemaDocument{}, err
	}
	fields := map[string]any{}
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return types.SchemaDocument{}, fmt.Errorf("schemaregistry: parse schema document: %w", err)
	}
	return schema.FromMap(fields)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func deletedIDs(result types.DeleteResult) []uuid.UUID {
	if result.Deleted {
		return []uuid.UUID{result.ID}
	}
	return nil
}

func missingIDs(result types.DeleteResult) []uuid.UUID {
	if !result.Deleted {
		return []uuid.UUID{result.ID}
	}
	return nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
