// Copyright (c) 2025 the govclient authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// govhub is an interactive terminal client for the GovHub municipal
// appointment system. It presents the same two flows the mobile app does:
// login/register while anonymous, departments and appointments once logged
// in.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/govhub/govclient"
	"github.com/govhub/govclient/store"
	"github.com/govhub/govclient/store/filestore"
	"github.com/govhub/govclient/store/sqlstore"
	"github.com/govhub/govclient/types"
	"github.com/govhub/govclient/types/events"
	gvLog "github.com/govhub/govclient/util/log"
)

var cli *govclient.Client
var watcher *govclient.HistoryWatcher

// All terminal input goes through one reader so prompts inside command
// handlers don't fight the main loop over stdin.
var stdin = bufio.NewReader(os.Stdin)

func main() {
	configPath := "govhub.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.StampMilli}).With().Timestamp().Logger()
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zl = zl.Level(level)
	}
	log := gvLog.Zerolog(zl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var container store.SessionContainer
	if cfg.DatabaseURL != "" {
		sqlContainer, err := sqlstore.New(ctx, cfg.DatabaseURL, log.Sub("Database"))
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to open session database:", err)
			os.Exit(1)
		}
		defer sqlContainer.Close()
		container = sqlContainer
	} else {
		container, err = filestore.New(cfg.SessionFile, cfg.SessionPassphrase, log.Sub("Filestore"))
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to open session file:", err)
			os.Exit(1)
		}
	}

	cli = govclient.NewClient(cfg.BaseURL, container, log.Sub("Client"))
	if cfg.Proxy != "" {
		if err = cli.SetProxyAddress(cfg.Proxy); err != nil {
			fmt.Fprintln(os.Stderr, "Invalid proxy:", err)
			os.Exit(1)
		}
	}
	cli.AddEventHandler(handleEvent)

	if user, _ := cli.RestoreSession(ctx); user != nil {
		fmt.Printf("Welcome back, %s.\n", user.FullName())
	} else {
		fmt.Println("Not logged in. Type `login` or `register` to get started.")
	}
	if cli.Flow() == govclient.FlowApp {
		watcher = cli.WatchHistory(ctx, 0)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		fmt.Println()
		cancel()
		os.Exit(0)
	}()

	for {
		fmt.Print("> ")
		line, err := stdin.ReadString('\n')
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "exit" || fields[0] == "quit" {
			return
		}
		handleCommand(ctx, strings.ToLower(fields[0]), fields[1:])
	}
}

// handleEvent reacts to session transitions: any change of the
// authenticated/anonymous flag switches the command set immediately and
// drops app-flow state (the history watcher) from the previous flow.
func handleEvent(evt any) {
	switch v := evt.(type) {
	case *events.LoggedIn:
		fmt.Printf("Logged in as %s.\n", v.User.FullName())
		if watcher == nil {
			watcher = cli.WatchHistory(context.Background(), 0)
		}
	case *events.LoggedOut:
		fmt.Println("Logged out.")
		if watcher != nil {
			watcher.Stop()
			watcher = nil
		}
	case *events.Registered:
		fmt.Printf("Registered %s. You can now log in.\n", v.EmailAddress)
	case *events.HistorySync:
		if v.Err != nil {
			fmt.Println("Background refresh failed:", v.Err)
		}
	}
}

func handleCommand(ctx context.Context, cmd string, args []string) {
	if cli.Flow() == govclient.FlowAuth {
		handleAuthCommand(ctx, cmd, args)
	} else {
		handleAppCommand(ctx, cmd, args)
	}
}

func handleAuthCommand(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "help":
		fmt.Println("Commands: login <email> <password>, register, help, exit")
	case "login":
		if len(args) < 2 {
			fmt.Println("Usage: login <email> <password>")
			return
		}
		if _, err := cli.Login(ctx, args[0], args[1]); err != nil {
			fmt.Println("Login failed:", err)
		}
	case "register":
		registerPrompt(ctx)
	default:
		fmt.Println("Log in first. Commands: login, register, help, exit")
	}
}

func handleAppCommand(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "help":
		fmt.Println("Commands: departments, book <department-id>, history, view <ticket-id>, edit <ticket-id>, delete <ticket-id>, logout, exit")
	case "departments":
		listDepartments(ctx)
	case "book":
		if len(args) < 1 {
			fmt.Println("Usage: book <department-id>")
			return
		}
		bookPrompt(ctx, args[0])
	case "history":
		showHistory(ctx)
		if watcher != nil {
			watcher.Poke()
		}
	case "view":
		if len(args) < 1 {
			fmt.Println("Usage: view <ticket-id>")
			return
		}
		viewAppointment(ctx, args[0])
	case "edit":
		if len(args) < 1 {
			fmt.Println("Usage: edit <ticket-id>")
			return
		}
		editPrompt(ctx, args[0])
	case "delete":
		if len(args) < 1 {
			fmt.Println("Usage: delete <ticket-id>")
			return
		}
		deleteTicket(ctx, args[0])
	case "logout":
		if err := cli.Logout(ctx); err != nil {
			fmt.Println("Logout failed:", err)
		}
	default:
		fmt.Println("Unknown command, try `help`")
	}
}

func listDepartments(ctx context.Context) {
	departments, err := cli.GetDepartments(ctx)
	if err != nil {
		fmt.Println("Failed to fetch departments:", err)
		return
	}
	for _, dept := range departments {
		fmt.Printf("%s  %s (%s)\n", dept.ID, dept.DepartmentName, dept.OperatingHours)
		for _, reason := range dept.AppointmentReasons {
			fmt.Printf("    - %s\n", reason)
		}
	}
}

func showHistory(ctx context.Context) {
	tickets, err := cli.GetTicketHistory(ctx)
	if err != nil {
		fmt.Println("Failed to fetch appointments:", err)
		return
	}
	if len(tickets) == 0 {
		fmt.Println("No appointments yet.")
		return
	}
	for _, ticket := range tickets {
		fmt.Printf("%s  %s at %s  [%s]  %s\n",
			ticket.ID, ticket.AppointmentDate.DateString(), ticket.AppointmentTime, ticket.Status, ticket.IssueDescription)
	}
}

func viewAppointment(ctx context.Context, ticketID string) {
	details, err := cli.GetAppointmentDetails(ctx, ticketID)
	if err != nil {
		fmt.Println("Failed to fetch appointment details:", err)
		return
	}
	ticket := details.Ticket
	fmt.Println("Issue:     ", ticket.IssueDescription)
	fmt.Println("Notes:     ", ticket.Notes)
	fmt.Println("Date:      ", ticket.AppointmentDate.DateString())
	fmt.Println("Time:      ", ticket.AppointmentTime)
	fmt.Println("Status:    ", ticket.Status)
	fmt.Println("Department:", details.DepartmentName())
	if ticket.StaffID != "" {
		fmt.Println("Staff:     ", ticket.StaffID)
	}
	if ticket.Feedback != "" {
		fmt.Println("Feedback:  ", ticket.Feedback)
	}
}

func deleteTicket(ctx context.Context, ticketID string) {
	if !promptYesNo("Delete this appointment?") {
		return
	}
	err := cli.DeleteTicket(ctx, ticketID, true)
	if err != nil {
		fmt.Println("Failed to delete:", err)
		return
	}
	fmt.Println("Appointment deleted.")
	if watcher != nil {
		watcher.Poke()
	}
}

func bookPrompt(ctx context.Context, departmentID string) {
	dept, err := cli.GetDepartment(ctx, departmentID)
	if err != nil {
		fmt.Println("Failed to fetch department:", err)
		return
	}
	fmt.Printf("Booking with %s\n", dept.DepartmentName)
	if len(dept.AppointmentReasons) > 0 {
		fmt.Println("Available reasons:", strings.Join(dept.AppointmentReasons, ", "))
	}
	draft := govclient.TicketDraft{
		IssueDescription: promptLine("Issue description: "),
		Notes:            promptLine("Notes (optional): "),
		AppointmentTime:  promptLine("Time (HH:MM:SS): "),
	}
	date, err := time.ParseInLocation("2006-01-02", promptLine("Date (YYYY-MM-DD): "), time.Local)
	if err != nil {
		fmt.Println("Invalid date:", err)
		return
	}
	draft.AppointmentDate = date
	ticket, err := cli.CreateTicket(ctx, departmentID, draft)
	if err != nil {
		fmt.Println("Failed to schedule appointment:", err)
		return
	}
	fmt.Println("Appointment scheduled, ticket", ticket.ID)
	if watcher != nil {
		watcher.Poke()
	}
}

func editPrompt(ctx context.Context, ticketID string) {
	edit := govclient.TicketEdit{
		IssueDescription: promptLine("Issue description: "),
		Notes:            promptLine("Notes: "),
	}
	date, err := time.ParseInLocation("2006-01-02", promptLine("Date (YYYY-MM-DD): "), time.Local)
	if err != nil {
		fmt.Println("Invalid date:", err)
		return
	}
	edit.AppointmentDate = date
	if _, err = cli.EditTicket(ctx, ticketID, edit); err != nil {
		fmt.Println("Failed to update appointment:", err)
		return
	}
	fmt.Println("Appointment updated.")
}

func registerPrompt(ctx context.Context) {
	profile := types.Customer{
		NIC:          promptLine("NIC (10 digits): "),
		FirstName:    promptLine("First name: "),
		LastName:     promptLine("Last name: "),
		Gender:       promptLine("Gender: "),
		PhoneNumber:  promptLine("Phone (10 digits): "),
		EmailAddress: promptLine("Email: "),
		Address:      promptLine("Address: "),
		Password:     promptLine("Password: "),
	}
	dob, err := time.ParseInLocation("2006-01-02", promptLine("Date of birth (YYYY-MM-DD): "), time.Local)
	if err != nil {
		fmt.Println("Invalid date:", err)
		return
	}
	profile.DateOfBirth = types.Timestamp{Time: dob}
	if err = cli.Register(ctx, profile); err != nil {
		fmt.Println("Registration failed:", err)
	}
}

func promptLine(prompt string) string {
	fmt.Print(prompt)
	line, err := stdin.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

func promptYesNo(prompt string) bool {
	answer := strings.ToLower(promptLine(prompt + " [y/N] "))
	return answer == "y" || answer == "yes"
}
