// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"

	"github.com/CrawX/go-hammie/bayes"
	"github.com/CrawX/go-hammie/classifier"
	"github.com/CrawX/go-hammie/config"
	"github.com/CrawX/go-hammie/corpus"
	"github.com/CrawX/go-hammie/costcounter"
	"github.com/CrawX/go-hammie/domain"
	"github.com/CrawX/go-hammie/evaluation"
	"github.com/CrawX/go-hammie/imapcorpus"
	"github.com/CrawX/go-hammie/kvstore/badgerkv"
	"github.com/CrawX/go-hammie/kvstore/sqlitekv"
	"github.com/CrawX/go-hammie/log"
	"github.com/CrawX/go-hammie/mail"
	"github.com/CrawX/go-hammie/persistence"
	"github.com/CrawX/go-hammie/trainer"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const DispositionHeader = "X-Hammie-Disposition"

type app struct {
	configFile  string
	storageFile string
	backend     string

	conf *config.Config

	l *logrus.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{
		l: log.Logger(log.LOG_MAIN),
	}

	rootCmd := &cobra.Command{
		Use:               "hammie",
		Short:             "Train and run a persistent spam classifier",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.loadConfig,
	}

	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "config.toml", "TOML config file")
	rootCmd.PersistentFlags().StringVar(&a.storageFile, "db", "", "classifier storage, overrides StorageFile")
	rootCmd.PersistentFlags().StringVar(&a.backend, "backend", "", "storage backend (snapshot|badger|sqlite), overrides Backend")

	rootCmd.AddCommand(
		a.newCommand(),
		a.filterCommand(),
		a.scoreCommand(),
		a.trainCommand(false),
		a.trainCommand(true),
		a.trainDirCommand(),
		a.trainImapCommand(),
		a.evaluateCommand(),
		a.convertCommand(),
	)

	return rootCmd
}

func (a *app) loadConfig(cmd *cobra.Command, args []string) error {
	conf, err := config.ReadConfig(a.configFile)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	if len(a.storageFile) > 0 {
		conf.StorageFile = a.storageFile
	}
	if len(a.backend) > 0 {
		conf.Backend = a.backend
	}
	if err := conf.Validate(); err != nil {
		return err
	}

	if conf.Loglevel != nil {
		log.SetLogLevel(*conf.Loglevel)
	}

	a.conf = conf
	return nil
}

// withClassifier runs fn on the configured classifier and closes it on every
// path. Nothing is stored unless fn calls Store.
func (a *app) withClassifier(fn func(pc *classifier.PersistentClassifier) error) (err error) {
	pc, err := openClassifier(a.conf)
	if err != nil {
		return err
	}
	defer closeInto(&err, pc, "classifier")

	return fn(pc)
}

// closeInto closes c and reports a close failure through err unless err
// already holds an earlier failure.
func closeInto(err *error, c io.Closer, what string) {
	closeErr := c.Close()
	if closeErr != nil && *err == nil {
		*err = fmt.Errorf("could not close %s: %w", what, closeErr)
	}
}

func (a *app) newCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create an empty classifier store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := removeStorage(a.conf.Backend, a.conf.StorageFile, force); err != nil {
				return err
			}

			return a.withClassifier(func(pc *classifier.PersistentClassifier) error {
				if err := pc.Store(); err != nil {
					return err
				}
				a.l.WithFields(logrus.Fields{"backend": a.conf.Backend, "storage": a.conf.StorageFile}).Info("Created empty classifier")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing store")

	return cmd
}

func (a *app) filterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "filter [file]",
		Short: "Classify a message and print it with a disposition header",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			return a.withClassifier(func(pc *classifier.PersistentClassifier) error {
				msg := mail.FromRaw(raw)
				class, err := pc.Classify(msg)
				if err != nil {
					return err
				}
				score, _ := msg.Score()

				_, err = cmd.OutOrStdout().Write(withDisposition(raw, class, score))
				return err
			})
		},
	}
}

func (a *app) scoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "score files...",
		Short: "Print score and classification of messages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readFiles(args)
			if err != nil {
				return err
			}
			msgs, err := classifier.Pretokenize(asMessages(files), runtime.NumCPU())
			if err != nil {
				return err
			}

			return a.withClassifier(func(pc *classifier.PersistentClassifier) error {
				for i, msg := range msgs {
					class, err := pc.Classify(msg)
					if err != nil {
						return err
					}
					score, _ := files[i].Score()
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.4f\t%s\n", args[i], score, class)
				}
				return nil
			})
		},
	}
}

func (a *app) trainCommand(untrain bool) *cobra.Command {
	var spam, ham bool

	use, short := "train [files...]", "Train messages from files or stdin"
	if untrain {
		use, short = "untrain [files...]", "Untrain previously trained messages from files or stdin"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			msgs, err := readMessages(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			return a.withClassifier(func(pc *classifier.PersistentClassifier) error {
				t := trainer.NewTrainer(pc, spam)
				if untrain {
					err = t.UntrainAll(msgs)
				} else {
					err = t.TrainAll(msgs)
				}
				if err != nil {
					return err
				}

				return pc.Store()
			})
		},
	}
	cmd.Flags().BoolVar(&spam, "spam", false, "the messages are spam")
	cmd.Flags().BoolVar(&ham, "ham", false, "the messages are ham")
	cmd.MarkFlagsMutuallyExclusive("spam", "ham")
	cmd.MarkFlagsOneRequired("spam", "ham")

	return cmd
}

func (a *app) trainDirCommand() *cobra.Command {
	var spamDirs, hamDirs []string

	cmd := &cobra.Command{
		Use:   "train-dir",
		Short: "Train every message of spam and ham directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClassifier(func(pc *classifier.PersistentClassifier) error {
				for _, set := range []struct {
					dirs    []string
					trainer *trainer.Trainer
				}{
					{spamDirs, trainer.NewSpamTrainer(pc)},
					{hamDirs, trainer.NewHamTrainer(pc)},
				} {
					for _, dir := range set.dirs {
						c, err := corpus.OpenDirectory(dir)
						if err != nil {
							return err
						}
						msgs, err := classifier.Pretokenize(c.Messages(), runtime.NumCPU())
						if err != nil {
							return err
						}
						if err := set.trainer.TrainAll(msgs); err != nil {
							return fmt.Errorf("could not train %s: %w", dir, err)
						}
					}
				}

				a.l.WithFields(logrus.Fields{"ham": pc.NumHam(), "spam": pc.NumSpam()}).Info("Trained directories")
				return pc.Store()
			})
		},
	}
	cmd.Flags().StringSliceVar(&spamDirs, "spam-dir", nil, "directory of spam messages")
	cmd.Flags().StringSliceVar(&hamDirs, "ham-dir", nil, "directory of ham messages")
	cmd.MarkFlagsOneRequired("spam-dir", "ham-dir")

	return cmd
}

func (a *app) trainImapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "train-imap",
		Short: "Train the configured IMAP folders, skipping messages trained before",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if err := a.conf.ValidateImap(); err != nil {
				return err
			}

			kv, err := sqlitekv.Open(a.conf.ImapLedger)
			if err != nil {
				return fmt.Errorf("could not open imap ledger: %w", err)
			}
			ledger := imapcorpus.NewLedger(kv)
			defer closeInto(&err, ledger, "imap ledger")

			source, err := imapcorpus.Dial(a.conf.ImapHost, a.conf.User, a.conf.Password)
			if err != nil {
				return err
			}
			defer closeInto(&err, source, "imap connection")

			return a.withClassifier(func(pc *classifier.PersistentClassifier) error {
				for _, set := range []struct {
					folders []string
					isSpam  bool
				}{
					{a.conf.SpamTrainFolders, true},
					{a.conf.HamTrainFolders, false},
				} {
					for _, folder := range set.folders {
						msgs, err := source.Messages(folder)
						if err != nil {
							return err
						}
						if _, err := ledger.Sync(pc, msgs, set.isSpam); err != nil {
							return fmt.Errorf("could not train folder %s: %w", folder, err)
						}
					}
				}

				if err := pc.Store(); err != nil {
					return err
				}
				return ledger.Commit()
			})
		},
	}
}

func (a *app) evaluateCommand() *cobra.Command {
	var (
		data     string
		sets     int
		decision string
		warmUp   int
		seed     int64
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Simulate training on error over Data/{Spam,Ham}/SetN and report the cost",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cutoffs := a.conf.Cutoffs()
			decide, err := evaluation.NewDecision(decision, cutoffs)
			if err != nil {
				return err
			}

			samples, err := evaluation.LoadSets(data, sets, seed)
			if err != nil {
				return err
			}
			msgs := make([]domain.Message, len(samples))
			for i, s := range samples {
				msgs[i] = s.Message
			}
			msgs, err = classifier.Pretokenize(msgs, runtime.NumCPU())
			if err != nil {
				return err
			}
			for i := range samples {
				samples[i].Message = msgs[i]
			}

			// the simulation starts from an empty classifier and is discarded afterwards
			kv, err := badgerkv.OpenInMemory()
			if err != nil {
				return err
			}
			pc, err := classifier.Open(persistence.NewIncrementalStore(kv), bayes.NewEngine(bayes.DefaultOptions()), cutoffs)
			if err != nil {
				return err
			}
			defer pc.Close()

			costs := costcounter.NoDelay(cutoffs, a.conf.Weights())
			driver := evaluation.NewDriver(pc, costs, evaluation.Options{
				Decision:         decide,
				WarmUp:           warmUp,
				ProgressInterval: evaluation.DefaultProgressInterval,
			})

			result, err := driver.Run(samples)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%5d trained:%dH+%dS\n%s\n", result.Seen, result.HamTrained, result.SpamTrained, costs)
			return nil
		},
	}
	cmd.Flags().StringVar(&data, "data", "Data", "root of the Spam/SetN and Ham/SetN directories")
	cmd.Flags().IntVarP(&sets, "sets", "n", 0, "number of sets")
	cmd.Flags().StringVar(&decision, "decision", evaluation.DecisionUnsureAndFalses, fmt.Sprintf("training decision, one of %v", evaluation.DecisionNames()))
	cmd.Flags().IntVar(&warmUp, "warmup", 30, "messages trained unconditionally before the decision applies")
	cmd.Flags().Int64Var(&seed, "seed", 1, "seed for the message order")
	cmd.MarkFlagRequired("sets")

	return cmd
}

func (a *app) convertCommand() *cobra.Command {
	var toBackend, toStorage string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Copy the classifier into a new store, possibly of another backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := removeStorage(toBackend, toStorage, false); err != nil {
				return err
			}

			return a.withClassifier(func(pc *classifier.PersistentClassifier) error {
				target, err := openStateStore(toBackend, toStorage)
				if err != nil {
					return fmt.Errorf("could not open target store: %w", err)
				}

				err = target.Save(pc.State())
				closeErr := target.Close()
				if err != nil {
					return fmt.Errorf("could not save into target store: %w", err)
				}
				if closeErr != nil {
					return fmt.Errorf("could not close target store: %w", closeErr)
				}

				a.l.WithFields(logrus.Fields{"from": a.conf.StorageFile, "to": toStorage, "backend": toBackend}).Info("Converted classifier")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&toBackend, "to-backend", config.BackendSnapshot, "backend of the new store")
	cmd.Flags().StringVar(&toStorage, "to-db", "", "file or directory of the new store")
	cmd.MarkFlagRequired("to-db")

	return cmd
}

// removeStorage makes sure nothing exists at storageFile, removing an
// existing store only if force is set.
func removeStorage(backend, storageFile string, force bool) error {
	_, err := os.Stat(storageFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not check %s: %w", storageFile, err)
	}
	if !force {
		return fmt.Errorf("%s already exists, use --force to replace it", storageFile)
	}

	files := []string{storageFile}
	if backend == config.BackendSqlite {
		files = append(files, storageFile+"-wal", storageFile+"-shm")
	}
	for _, f := range files {
		if err := os.RemoveAll(f); err != nil {
			return fmt.Errorf("could not remove %s: %w", f, err)
		}
	}

	return nil
}

// withDisposition prepends the classification header, keeping the line
// endings of raw.
func withDisposition(raw []byte, class domain.Classification, score float64) []byte {
	newline := "\n"
	if bytes.Contains(raw, []byte("\r\n")) {
		newline = "\r\n"
	}

	header := fmt.Sprintf("%s: %s; %.4f%s", DispositionHeader, class, score, newline)
	return append([]byte(header), raw...)
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 {
		raw, err := ioutil.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("could not read message from stdin: %w", err)
		}
		return raw, nil
	}

	raw, err := ioutil.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("could not read message: %w", err)
	}
	return raw, nil
}

func readFiles(files []string) ([]*mail.Message, error) {
	msgs := make([]*mail.Message, 0, len(files))
	for _, f := range files {
		raw, err := ioutil.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("could not read message: %w", err)
		}
		msgs = append(msgs, mail.NewMessage(filepath.Base(f), raw))
	}
	return msgs, nil
}

// readMessages reads args or, without args, a single message from stdin.
func readMessages(stdin io.Reader, args []string) ([]domain.Message, error) {
	if len(args) == 0 {
		raw, err := readInput(stdin, nil)
		if err != nil {
			return nil, err
		}
		return []domain.Message{mail.FromRaw(raw)}, nil
	}

	files, err := readFiles(args)
	if err != nil {
		return nil, err
	}
	return asMessages(files), nil
}

func asMessages(files []*mail.Message) []domain.Message {
	msgs := make([]domain.Message, 0, len(files))
	for _, m := range files {
		msgs = append(msgs, m)
	}
	return msgs
}
