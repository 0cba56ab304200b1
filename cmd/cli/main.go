package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "vehicle":
		handleVehicle(args)
	case "client":
		handleClient(args)
	case "rent":
		handleRent(args)
	case "return":
		handleReturn(args)
	case "rentals":
		listRentals()
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`fleetrent - vehicle rental management CLI

Usage:
  fleetrent vehicle add -brand <brand> -model <model> -year <year>
  fleetrent vehicle list
  fleetrent vehicle rm -id <id>
  fleetrent client add -name <name> -cpf <cpf>
  fleetrent client list
  fleetrent client rm -id <id>
  fleetrent rent -client <id> -vehicle <id>
  fleetrent return -vehicle <id> -rate <dailyRate>
  fleetrent rentals

The server address is taken from FLEETRENT_URL (default http://localhost:8080).`)
}

func baseURL() string {
	if url := os.Getenv("FLEETRENT_URL"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

func handleVehicle(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: fleetrent vehicle <add|list|rm>")
		return
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("vehicle add", flag.ExitOnError)
		brand := fs.String("brand", "", "vehicle brand")
		model := fs.String("model", "", "vehicle model")
		year := fs.Int("year", 0, "vehicle year")
		fs.Parse(args[1:])

		var resp struct {
			ID int64 `json:"id"`
		}
		if err := postJSON("/api/vehicles", map[string]any{
			"brand": *brand, "model": *model, "year": *year,
		}, &resp); err != nil {
			fail(err)
		}
		fmt.Printf("vehicle %d registered\n", resp.ID)

	case "list":
		var vehicles []struct {
			ID        int64  `json:"id"`
			Brand     string `json:"brand"`
			Model     string `json:"model"`
			Year      int    `json:"year"`
			Available bool   `json:"available"`
		}
		if err := getJSON("/api/vehicles", &vehicles); err != nil {
			fail(err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tBRAND\tMODEL\tYEAR\tSTATUS")
		for _, v := range vehicles {
			status := "available"
			if !v.Available {
				status = "rented"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", v.ID, v.Brand, v.Model, v.Year, status)
		}
		w.Flush()

	case "rm":
		fs := flag.NewFlagSet("vehicle rm", flag.ExitOnError)
		id := fs.Int64("id", 0, "vehicle id")
		fs.Parse(args[1:])

		if err := doDelete(fmt.Sprintf("/api/vehicles/%d", *id)); err != nil {
			fail(err)
		}
		fmt.Printf("vehicle %d removed\n", *id)

	default:
		fmt.Println("Usage: fleetrent vehicle <add|list|rm>")
	}
}

func handleClient(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: fleetrent client <add|list|rm>")
		return
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("client add", flag.ExitOnError)
		name := fs.String("name", "", "client name")
		cpf := fs.String("cpf", "", "client fiscal identifier")
		fs.Parse(args[1:])

		var resp struct {
			ID int64 `json:"id"`
		}
		if err := postJSON("/api/clients", map[string]any{
			"name": *name, "cpf": *cpf,
		}, &resp); err != nil {
			fail(err)
		}
		fmt.Printf("client %d registered\n", resp.ID)

	case "list":
		var clients []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
			CPF  string `json:"cpf"`
		}
		if err := getJSON("/api/clients", &clients); err != nil {
			fail(err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCPF")
		for _, c := range clients {
			fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.Name, c.CPF)
		}
		w.Flush()

	case "rm":
		fs := flag.NewFlagSet("client rm", flag.ExitOnError)
		id := fs.Int64("id", 0, "client id")
		fs.Parse(args[1:])

		if err := doDelete(fmt.Sprintf("/api/clients/%d", *id)); err != nil {
			fail(err)
		}
		fmt.Printf("client %d removed\n", *id)

	default:
		fmt.Println("Usage: fleetrent client <add|list|rm>")
	}
}

func handleRent(args []string) {
	fs := flag.NewFlagSet("rent", flag.ExitOnError)
	clientID := fs.Int64("client", 0, "client id")
	vehicleID := fs.Int64("vehicle", 0, "vehicle id")
	fs.Parse(args)

	var resp struct {
		ID        int64     `json:"id"`
		StartedAt time.Time `json:"startedAt"`
	}
	if err := postJSON("/api/rentals", map[string]any{
		"clientId": *clientID, "vehicleId": *vehicleID,
	}, &resp); err != nil {
		fail(err)
	}
	fmt.Printf("rental %d opened at %s\n", resp.ID, resp.StartedAt.Format(time.RFC3339))
}

func handleReturn(args []string) {
	fs := flag.NewFlagSet("return", flag.ExitOnError)
	vehicleID := fs.Int64("vehicle", 0, "vehicle id")
	rate := fs.Float64("rate", 0, "daily rate")
	fs.Parse(args)

	var resp struct {
		RentalID    int64   `json:"rentalId"`
		DaysCharged int     `json:"daysCharged"`
		TotalCharge float64 `json:"totalCharge"`
	}
	if err := postJSON(fmt.Sprintf("/api/vehicles/%d/return", *vehicleID), map[string]any{
		"dailyRate": *rate,
	}, &resp); err != nil {
		fail(err)
	}
	fmt.Printf("rental %d closed: %d day(s), total %.2f\n", resp.RentalID, resp.DaysCharged, resp.TotalCharge)
}

func listRentals() {
	var rentals []struct {
		ID          int64      `json:"id"`
		Client      string     `json:"client"`
		Vehicle     string     `json:"vehicle"`
		StartedAt   time.Time  `json:"startedAt"`
		EndedAt     *time.Time `json:"endedAt"`
		TotalCharge *float64   `json:"totalCharge"`
	}
	if err := getJSON("/api/rentals", &rentals); err != nil {
		fail(err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCLIENT\tVEHICLE\tSTARTED\tENDED\tCHARGE")
	for _, r := range rentals {
		ended := "-"
		if r.EndedAt != nil {
			ended = r.EndedAt.Format(time.RFC3339)
		}
		charge := "-"
		if r.TotalCharge != nil {
			charge = fmt.Sprintf("%.2f", *r.TotalCharge)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Client, r.Vehicle, r.StartedAt.Format(time.RFC3339), ended, charge)
	}
	w.Flush()
}

func getJSON(path string, out any) error {
	resp, err := http.Get(baseURL() + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func postJSON(path string, body map[string]any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := http.Post(baseURL()+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func doDelete(path string) error {
	req, err := http.NewRequest(http.MethodDelete, baseURL()+path, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return apiError(resp)
	}
	return nil
}

func apiError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("%s (HTTP %d)", body.Error, resp.StatusCode)
	}
	return fmt.Errorf("HTTP %d", resp.StatusCode)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
