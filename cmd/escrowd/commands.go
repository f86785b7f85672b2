package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
)

// flags
var (
	subjectFlag = &cli.StringFlag{
		Name:     "subject",
		Usage:    "the id of the subject",
		Required: true,
	}
	valueFlag = &cli.Uint64Flag{
		Name:     "value",
		Usage:    "the value sent along with the request",
		Required: true,
	}
	kindFlag = &cli.StringFlag{
		Name:  "kind",
		Usage: "the kind of request, registration or clearing",
		Value: "registration",
	}
	sideFlag = &cli.StringFlag{
		Name:     "side",
		Usage:    "the side to fund, requester or challenger",
		Required: true,
	}
	requestFlag = &cli.IntFlag{
		Name:  "request",
		Usage: "the index of the request",
	}
	roundFlag = &cli.IntFlag{
		Name:  "round",
		Usage: "the index of the round, all rounds if omitted",
		Value: -1,
	}
	beneficiaryFlag = &cli.StringFlag{
		Name:  "beneficiary",
		Usage: "the account receiving the reward, defaults to the caller",
	}
	offsetFlag = &cli.IntFlag{
		Name:  "offset",
		Usage: "the number of subjects to skip",
	}
	limitFlag = &cli.IntFlag{
		Name:  "limit",
		Usage: "the max number of subjects to list",
	}
	paramsFlag = &cli.StringFlag{
		Name:     "params",
		Usage:    "the JSON encoded params",
		Required: true,
	}
)

// commands
var (
	subjectCmd = &cli.Command{
		Name:  "subject",
		Usage: "Inspect subjects and manage their requests",
		Subcommands: append(
			cli.Commands{},
			subjectGetCmd,
			subjectListCmd,
			subjectSubmitCmd,
			subjectChallengeCmd,
		),
	}
	subjectGetCmd = &cli.Command{
		Name:   "get",
		Usage:  "Get a subject with its requests",
		Action: subjectGetAction,
		Flags:  []cli.Flag{subjectFlag},
	}
	subjectListCmd = &cli.Command{
		Name:   "list",
		Usage:  "List subject ids",
		Action: subjectListAction,
		Flags:  []cli.Flag{offsetFlag, limitFlag},
	}
	subjectSubmitCmd = &cli.Command{
		Name:   "submit",
		Usage:  "Submit a request for a subject",
		Action: subjectSubmitAction,
		Flags:  []cli.Flag{subjectFlag, kindFlag, valueFlag},
	}
	subjectChallengeCmd = &cli.Command{
		Name:   "challenge",
		Usage:  "Challenge the open request of a subject",
		Action: subjectChallengeAction,
		Flags:  []cli.Flag{subjectFlag, valueFlag},
	}
	contributeCmd = &cli.Command{
		Name:   "contribute",
		Usage:  "Fund a side of the current round of a subject",
		Action: contributeAction,
		Flags:  []cli.Flag{subjectFlag, sideFlag, valueFlag},
	}
	withdrawCmd = &cli.Command{
		Name:   "withdraw",
		Usage:  "Withdraw the rewards of a resolved request",
		Action: withdrawAction,
		Flags:  []cli.Flag{subjectFlag, requestFlag, roundFlag, beneficiaryFlag},
	}
	paramsCmd = &cli.Command{
		Name:  "params",
		Usage: "Get or update the engine params",
		Subcommands: append(
			cli.Commands{},
			paramsGetCmd,
			paramsUpdateCmd,
		),
	}
	paramsGetCmd = &cli.Command{
		Name:   "get",
		Usage:  "Get the current params",
		Action: paramsGetAction,
	}
	paramsUpdateCmd = &cli.Command{
		Name:   "update",
		Usage:  "Replace the params, governor only",
		Action: paramsUpdateAction,
		Flags:  []cli.Flag{paramsFlag},
	}
)

func subjectGetAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/subjects/%s", ctx.String("url"), ctx.String("subject"))
	subject, err := get[json.RawMessage](url, "", auth(ctx))
	if err != nil {
		return err
	}
	return printJSON(subject)
}

func subjectListAction(ctx *cli.Context) error {
	url := fmt.Sprintf(
		"%s/v1/subjects?offset=%d&limit=%d",
		ctx.String("url"), ctx.Int("offset"), ctx.Int("limit"),
	)
	ids, err := get[[]string](url, "subjects", auth(ctx))
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func subjectSubmitAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/subjects/%s/requests", ctx.String("url"), ctx.String("subject"))
	body := fmt.Sprintf(`{"kind": "%s", "value": %d}`, ctx.String("kind"), ctx.Uint64("value"))
	res, err := post[json.RawMessage](url, body, "", auth(ctx))
	if err != nil {
		return err
	}
	return printJSON(res)
}

func subjectChallengeAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/subjects/%s/challenge", ctx.String("url"), ctx.String("subject"))
	body := fmt.Sprintf(`{"value": %d}`, ctx.Uint64("value"))
	res, err := post[json.RawMessage](url, body, "", auth(ctx))
	if err != nil {
		return err
	}
	return printJSON(res)
}

func contributeAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/subjects/%s/contributions", ctx.String("url"), ctx.String("subject"))
	body := fmt.Sprintf(`{"side": "%s", "value": %d}`, ctx.String("side"), ctx.Uint64("value"))
	res, err := post[json.RawMessage](url, body, "", auth(ctx))
	if err != nil {
		return err
	}
	return printJSON(res)
}

func withdrawAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/subjects/%s/withdrawals", ctx.String("url"), ctx.String("subject"))
	req := map[string]interface{}{
		"beneficiary": ctx.String("beneficiary"),
		"request":     ctx.Int("request"),
	}
	if round := ctx.Int("round"); round >= 0 {
		req["round"] = round
	}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	amount, err := post[uint64](url, string(body), "amount", auth(ctx))
	if err != nil {
		return err
	}
	fmt.Println(amount)
	return nil
}

func paramsGetAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/params", ctx.String("url"))
	params, err := get[json.RawMessage](url, "", auth(ctx))
	if err != nil {
		return err
	}
	return printJSON(params)
}

func paramsUpdateAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/params", ctx.String("url"))
	params, err := do[json.RawMessage](http.MethodPut, url, ctx.String("params"), "", auth(ctx))
	if err != nil {
		return err
	}
	return printJSON(params)
}

type credentials struct {
	caller string
	token  string
}

func auth(ctx *cli.Context) credentials {
	return credentials{ctx.String("caller"), ctx.String("token")}
}

func post[T any](url, body, key string, creds credentials) (result T, err error) {
	return do[T](http.MethodPost, url, body, key, creds)
}

func get[T any](url, key string, creds credentials) (result T, err error) {
	return do[T](http.MethodGet, url, "", key, creds)
}

// do sends the request and decodes either the whole response or, if key
// is set, the field with that name.
func do[T any](method, url, body, key string, creds credentials) (result T, err error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return
	}
	req.Header.Add("Content-Type", "application/json")
	if len(creds.token) > 0 {
		req.Header.Add("Authorization", "Bearer "+creds.token)
	}
	if len(creds.caller) > 0 {
		req.Header.Add("X-Caller", creds.caller)
	}
	client := &http.Client{Timeout: 30 * time.Second}

	resp, err := client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return
	}
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("failed to %s %s: %s", strings.ToLower(method), url, string(buf))
		return
	}
	if key == "" {
		err = json.Unmarshal(buf, &result)
		return
	}
	res := make(map[string]T)
	if err = json.Unmarshal(buf, &res); err != nil {
		return
	}

	result = res[key]
	return
}

func printJSON(raw json.RawMessage) error {
	buf, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(buf))
	return nil
}
