/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/carverauto/fleetaudit/pkg/cli"
	"github.com/carverauto/fleetaudit/pkg/lifecycle"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd, err := cli.ParseFlags(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		cli.PrintUsage(os.Stderr)

		return exitUsage
	}

	if cmd.Help {
		cli.PrintUsage(os.Stdout)
		return exitOK
	}

	ctx, stop := lifecycle.SignalContext(context.Background())
	defer stop()

	if err := cli.Execute(ctx, cmd, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		if errors.Is(err, cli.ErrUsage) {
			return exitUsage
		}

		return exitError
	}

	return exitOK
}
