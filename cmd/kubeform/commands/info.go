package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/kubeform/kubeform/cmd/kubeform/utils"
	"github.com/kubeform/kubeform/pkg/cloud"
	"github.com/kubeform/kubeform/pkg/cloud/eks"
	"github.com/kubeform/kubeform/pkg/cloud/gke"
	"github.com/kubeform/kubeform/pkg/kubeform"
)

var providerFlag = &cli.StringFlag{
	Name:    "provider",
	Aliases: []string{"p"},
	Usage:   "the provider to query",
	EnvVars: []string{"KUBE_SERVICE"},
	Value:   "gke",
}

var InfoCommands = []*cli.Command{
	{
		Name:  "regions",
		Usage: "list the regions a provider can place clusters in",
		Flags: []cli.Flag{providerFlag},
		Action: func(c *cli.Context) error {
			provider := c.String("provider")
			isEKS := strings.ToUpper(provider) == "EKS"

			table := tablewriter.NewWriter(os.Stdout)
			header := []string{"Region", "Zones"}
			if isEKS {
				header = append(header, "Geography")
			}
			table.SetHeader(header)
			for _, region := range providerRegions(provider) {
				row := []string{region, strings.Join(providerZones(provider, region), ", ")}
				if isEKS {
					row = append(row, eks.GetGeography(region))
				}
				table.Append(row)
			}
			utils.FormatTable(table)
			table.Render()
			return nil
		},
	},
	{
		Name:      "zones",
		Usage:     "list the zones within a region",
		ArgsUsage: "<region>",
		Flags:     []cli.Flag{providerFlag},
		Action: func(c *cli.Context) error {
			region := c.Args().First()
			if region == "" {
				return errors.New("a region is required")
			}
			zones := providerZones(c.String("provider"), region)
			if len(zones) == 0 {
				return errors.Errorf("unknown region %s", region)
			}
			for _, zone := range zones {
				fmt.Println(zone)
			}
			return nil
		},
	},
	{
		Name:  "instance-types",
		Usage: "list the known machine types and their monthly price",
		Action: func(c *cli.Context) error {
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Name", "Cores", "Memory (GB)", "USD/month"})
			for _, m := range gke.GetMachineTypes() {
				table.Append([]string{
					m.Name,
					strconv.Itoa(m.Cores),
					strconv.FormatFloat(m.Memory, 'f', -1, 64),
					strconv.FormatFloat(m.PerMonth, 'f', 2, 64),
				})
			}
			utils.FormatTable(table)
			table.Render()
			return nil
		},
	},
	{
		Name:      "versions",
		Usage:     "list the Kubernetes versions available for new clusters",
		ArgsUsage: "<project> <zone>",
		Flags: []cli.Flag{
			providerFlag,
			&cli.StringFlag{
				Name:    "auth",
				Aliases: []string{"a"},
				Usage:   "the auth file containing credentials for use with the provider",
				EnvVars: []string{"GOOGLE_APPLICATION_CREDENTIALS"},
			},
		},
		Action: runVersions,
	},
}

func runVersions(c *cli.Context) error {
	cfg := &cloud.Config{
		Provider: c.String("provider"),
		AuthFile: c.String("auth"),
	}
	ctx := context.Background()
	kf, err := kubeform.New(ctx, cfg, cloud.NopObserver(), logrus.StandardLogger())
	if err != nil {
		return err
	}
	versions, err := kf.GetAPIVersions(ctx, c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Version", "Default"})
	for _, v := range versions.ValidMasterVersions {
		def := ""
		if v == versions.DefaultClusterVersion {
			def = "*"
		}
		table.Append([]string{v, def})
	}
	utils.FormatTable(table)
	table.Render()
	return nil
}

func providerRegions(provider string) []string {
	if strings.ToUpper(provider) == "EKS" {
		return eks.GetRegions()
	}
	return gke.GetRegions()
}

func providerZones(provider, region string) []string {
	if strings.ToUpper(provider) == "EKS" {
		return eks.GetZones(region)
	}
	return gke.GetZones(region)
}
