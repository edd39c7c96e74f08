package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/densk/testservices/services"
)

func main() {
	args := os.Args
	if len(args) < 2 {
		printHelp()
		return
	}

	switch args[1] {
	case "run":
		if len(args) != 3 {
			fmt.Println("expected command 'run SERVICE'")
			printServices()
			return
		}
		run(args[2])
	case "list":
		printServices()
	case "help":
		printHelp()
	default:
		fmt.Printf("%s is not a valid command\n", args[1])
		printHelp()
	}
}

// run starts the service in the foreground until an interrupt arrives.
func run(name string) {
	info, ok := services.Lookup(name)
	if !ok {
		fmt.Printf("%s is not a known service\n", name)
		printServices()
		os.Exit(1)
	}
	s, err := info.Start(os.Stdout)
	if err != nil {
		fmt.Printf("failed to start %s: %s\n", name, err)
		os.Exit(1)
	}

	// kill (no param) default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		fmt.Printf("failed to stop %s: %s\n", name, err)
		os.Exit(1)
	}
}

func printServices() {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tNOMINAL PORT")
	for _, info := range services.All {
		fmt.Fprintf(tw, "%s\t%d\n", info.Name, info.NominalPort)
	}
	tw.Flush()
}

func printHelp() {
	fmt.Printf(`The commands are:
	run SERVICE    start the service in the foreground, Ctrl^C stops it
	list           print the known services and their nominal ports
	help           print the list of the commands
`)
}
