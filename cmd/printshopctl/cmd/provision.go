package cmd

import (
	"fmt"
	"printshop/internal/service/provision"
	"strconv"

	"github.com/spf13/cobra"
)

func newProvisionCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "provision <product-id>",
		Short: "Привязать к изделию типовые операции",
		Long: `Привязывает к изделию операции по нормам его типа, если у изделия
ещё нет ни одной операции. Повторный запуск ничего не меняет.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("некорректный id изделия %q", args[0])
			}

			store, _, closeFn, err := root.open()
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := provision.NewService(store, root.logger(cmd)).ProvisionMissingOperations(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case res.AlreadyConfigured:
				fmt.Fprintf(out, "изделие %d уже настроено: операций %d\n", id, len(res.Linked))
			case len(res.Linked) == 0:
				fmt.Fprintf(out, "для изделия %d нет типовых операций\n", id)
			default:
				fmt.Fprintf(out, "изделию %d привязано операций: %d %v\n", id, len(res.Linked), res.Linked)
			}
			return nil
		},
	}
}
