package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/grove-ml/grove/checkpoint"
	"github.com/grove-ml/grove/tensor"
)

var inspectChecksum bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.grove>",
	Short: "Describe the contents of a .grove file",
	Long:  `Prints the header, tensor table, and training metadata of a checkpoint without loading tensor data.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(args[0])
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectChecksum, "verify", false, "verify the data checksum (reads the whole file)")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(path string) error {
	r, err := checkpoint.NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	header := r.Header()
	fmt.Printf("file:          %s\n", path)
	fmt.Printf("model type:    %s\n", header.ModelType)
	fmt.Printf("grove version: %s\n", header.GroveVersion)
	fmt.Printf("created at:    %s\n", header.CreatedAt.Format("2006-01-02 15:04:05 UTC"))

	var elements int64
	for _, meta := range header.Tensors {
		n := int64(1)
		for _, dim := range meta.Shape {
			n *= int64(dim)
		}
		elements += n
	}
	fmt.Printf("tensors:       %d (%d elements)\n", len(header.Tensors), elements)

	if ckpt := header.Checkpoint; ckpt != nil {
		fmt.Printf("checkpoint:    step %d, epoch %d, loss %g (%s)\n",
			ckpt.Step, ckpt.Epoch, ckpt.Loss, ckpt.OptimizerType)
	}
	for k, v := range header.Metadata {
		fmt.Printf("metadata:      %s = %s\n", k, v)
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDTYPE\tSHAPE\tBYTES")
	for _, meta := range header.Tensors {
		fmt.Fprintf(w, "%s\t%s\t%v\t%d\n", meta.Name, meta.DType, tensor.Shape(meta.Shape), meta.Size)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if inspectChecksum {
		if _, err := r.ReadTree(); err != nil {
			return err
		}
		fmt.Println("\nchecksum OK")
	}
	return nil
}
