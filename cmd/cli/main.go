package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/juho05/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/restoka/closing"

	"github.com/restoka/closing/config"
	"github.com/restoka/closing/recordapi"
	"github.com/restoka/closing/services"
)

func createUser(directory services.DirectoryService, args []string) error {
	if len(args) < 3 {
		fmt.Println("USAGE closing-cli create-user <name> <role> <pin> [store_id] [store_access,...]")
		os.Exit(1)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(args[2]), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash pin: %w", err)
	}
	user := recordapi.NewUser{
		Name:    args[0],
		Role:    args[1],
		PINHash: string(hash),
	}
	if len(args) > 3 {
		user.StoreID = args[3]
	}
	if len(args) > 4 {
		user.StoreAccess = strings.Split(args[4], ",")
	}
	created, err := directory.CreateUser(context.Background(), user)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s): %s\n", created.Name, created.Role, created.ID)
	return nil
}

func setRole(directory services.DirectoryService, args []string) error {
	if len(args) < 2 {
		fmt.Println("USAGE closing-cli set-role <user_id> <cashier|manager|admin>")
		os.Exit(1)
	}
	role := args[1]
	_, err := directory.UpdateUser(context.Background(), args[0], recordapi.UserChanges{
		Role: &role,
	})
	return err
}

func hashPIN(args []string) error {
	if len(args) == 0 {
		fmt.Println("USAGE closing-cli hash-pin <pin>")
		os.Exit(1)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	fmt.Println(string(hash))
	return nil
}

func listStores(client recordapi.Client) error {
	stores, err := client.ListStores(context.Background())
	if err != nil {
		return err
	}
	for _, store := range stores {
		fmt.Printf("%s: %s\n", store.ID, store.Name)
	}
	return nil
}

func run(args []string) error {
	client := recordapi.NewClient(config.RecordAPIURL(), config.RecordAPIKey())
	directory := services.NewDirectoryService(client)
	if len(args) == 0 {
		fmt.Println(`USAGE closing-cli <command>
COMMANDS
		- create-user <name> <role> <pin> [store_id] [store_access,...]
		- set-role <user_id> <cashier|manager|admin>
		- hash-pin <pin>
		- stores
		`)
		os.Exit(1)
	}
	var err error
	switch args[0] {
	case "create-user":
		err = createUser(directory, args[1:])
	case "set-role":
		err = setRole(directory, args[1:])
	case "hash-pin":
		err = hashPIN(args[1:])
	case "stores":
		err = listStores(client)
	default:
		err = fmt.Errorf("unknown command: %s", args[0])
	}
	return err
}

func main() {
	godotenv.Load()
	closing.Initialize()

	log.SetSeverity(config.LogLevel())
	log.SetOutput(config.LogFile())

	err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
	fmt.Println("Done.")
}
