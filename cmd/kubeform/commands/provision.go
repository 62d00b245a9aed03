package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/kubeform/kubeform/cmd/kubeform/utils"
	"github.com/kubeform/kubeform/pkg/cloud"
	"github.com/kubeform/kubeform/pkg/cloud/types"
	"github.com/kubeform/kubeform/pkg/kubeform"
	"github.com/kubeform/kubeform/pkg/utils/files"
)

var ProvisionCommands = []*cli.Command{
	{
		Name:      "provision",
		Usage:     "provision a Kubernetes cluster",
		ArgsUsage: "[config path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   "the provider to use to provision the Kubernetes cluster",
				EnvVars: []string{"KUBE_SERVICE"},
				Value:   "gke",
			},
			&cli.StringFlag{
				Name:    "auth",
				Aliases: []string{"a"},
				Usage:   "the auth file containing credentials for use with the provider",
				EnvVars: []string{"GOOGLE_APPLICATION_CREDENTIALS"},
			},
			&cli.StringFlag{
				Name:  "creds",
				Usage: "a token file holding the cluster service account's credentials from a previous run",
			},
			&cli.StringFlag{
				Name:    "organization",
				Aliases: []string{"o"},
				Usage:   "the organization id that owns the cluster",
				EnvVars: []string{"GOOGLE_ORGANIZATION_ID"},
			},
			&cli.StringFlag{
				Name:    "billing",
				Aliases: []string{"b"},
				Usage:   "the billing account to use for the cluster",
				EnvVars: []string{"GOOGLE_BILLING_ID"},
			},
			&cli.StringFlag{
				Name:  "project",
				Usage: "the project to provision into, defaults to the cluster name",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "where to write the provisioned cluster's details",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "abort provisioning after this long, 0 means no limit",
			},
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "prompt for cluster options instead of reading a config file",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "output verbose logging",
			},
		},
		Action: runProvision,
	},
}

func runProvision(c *cli.Context) error {
	logger := logrus.StandardLogger()
	if c.Bool("verbose") {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg := &cloud.Config{
		Provider:       c.String("provider"),
		AuthFile:       c.String("auth"),
		CredFile:       c.String("creds"),
		OrganizationID: c.String("organization"),
		BillingAccount: c.String("billing"),
		ProjectID:      c.String("project"),
	}

	opts := &types.ClusterSpec{}
	if c.Bool("interactive") {
		if err := inquireOptions(cfg, opts); err != nil {
			return err
		}
	} else {
		configPath := c.Args().First()
		if configPath == "" {
			configPath = "./cluster.json"
		}
		fullPath, err := filepath.Abs(configPath)
		if err != nil {
			fullPath = configPath
		}
		if err := files.LoadTokens(fullPath, opts); err != nil {
			return errors.Wrapf(err, "failed to create cluster from file '%s'", configPath)
		}
	}

	observer := cloud.ObserverFunc(func(event string, payload interface{}) {
		logger.WithField("event", event).Info("provisioning milestone reached")
	})

	ctx := context.Background()
	if timeout := c.Duration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	kf, err := kubeform.New(ctx, cfg, observer, logger)
	if err != nil {
		return err
	}
	cluster, err := kf.Create(ctx, opts)
	if err != nil {
		return errors.Wrap(err, "failed to create cluster")
	}

	outputPath := c.String("file")
	if outputPath == "" {
		outputPath = fmt.Sprintf("./cluster-%d.json", time.Now().UnixNano()/int64(time.Millisecond))
	}
	outputPath, err = filepath.Abs(outputPath)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cluster, "", "  ")
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(outputPath, data, 0600); err != nil {
		return errors.Wrapf(err, "failed to write cluster details to '%s'", outputPath)
	}
	logger.Infof("cluster details written to '%s'", outputPath)
	if c.Bool("verbose") {
		utils.PrintJSON(cluster)
	}

	// the cluster itself is already up, so a failed kubeconfig fetch only
	// costs the convenience file
	if cluster.MasterEndpoint != "" {
		kubeconfigPath := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + "-kubeconfig.yaml"
		if err := writeKubeConfig(ctx, kf, cluster, kubeconfigPath); err != nil {
			logger.Warnf("failed to write kubeconfig: %v", err)
		} else {
			logger.Infof("kubeconfig written to '%s'", kubeconfigPath)
		}
	}

	if cluster.Credentials != nil {
		utils.PrintImportant(
			fmt.Sprintf("The file '%s' contains the service account's credentials.\n"+
				"The secret portion cannot be retrieved again, keep the file safe.", outputPath),
			"CREDENTIALS")
	}
	return nil
}

func writeKubeConfig(ctx context.Context, kf *kubeform.Kubeform, cluster *types.ClusterSpec, path string) error {
	config, err := kf.GetKubeConfig(ctx, cluster)
	if err != nil {
		return err
	}
	return clientcmd.WriteToFile(config, path)
}
