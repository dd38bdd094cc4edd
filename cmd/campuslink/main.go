package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"campuslink-client-go/internal/bootstrap"
	"campuslink-client-go/internal/domain/connection"
	"campuslink-client-go/internal/domain/eventbus"
)

const usage = `campuslink <command> [args]

Commands:
  login -u <username> -p <password>   sign in and persist the session
  logout                              sign out and clear stored credentials
  whoami [-force]                     show the current user's profile
  probe                               probe host candidates and print the base URL
  posts [-page N] [-limit N] [-search TEXT]
  like <post-id>                      toggle a like on a post
  report <post-id>                    report a post
  item <item-id>                      show a marketplace item
  sold <item-id>                      mark a marketplace item as sold
  unread                              show the unread notification count
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := bootstrap.NewClient(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "campuslink:", err)
		os.Exit(1)
	}
	defer client.Close(ctx)

	_ = eventbus.Subscribe(eventbus.TopicSessionExpired, func() {
		fmt.Fprintln(os.Stderr, "campuslink: session expired, please sign in again")
	})

	if err := dispatch(ctx, client, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "campuslink:", err)
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, client *bootstrap.Client, command string, args []string) error {
	api := client.API

	switch command {
	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		username := fs.String("u", "", "username")
		password := fs.String("p", "", "password")
		_ = fs.Parse(args)
		if *username == "" || *password == "" {
			return fmt.Errorf("login requires -u and -p")
		}
		user, err := api.Login(ctx, *username, *password)
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s (#%d)\n", user.Username, user.ID)
		return nil

	case "logout":
		if err := api.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("signed out")
		return nil

	case "whoami":
		fs := flag.NewFlagSet("whoami", flag.ExitOnError)
		force := fs.Bool("force", false, "bypass the profile cache")
		_ = fs.Parse(args)
		user, err := api.CurrentUser(ctx, *force)
		if err != nil {
			return err
		}
		fmt.Printf("%s (#%d)\n", user.Username, user.ID)
		if user.Email != "" {
			fmt.Println("  email:", user.Email)
		}
		if user.Course != "" {
			fmt.Printf("  course: %s (year %d)\n", user.Course, user.Year)
		}
		if pic := api.ProfilePictureURL(user.ProfilePicture); pic != "" {
			fmt.Println("  picture:", pic)
		}
		return nil

	case "probe":
		url, err := api.RefreshBaseURL(ctx)
		if err != nil {
			return err
		}
		fmt.Println(url)
		return nil

	case "posts":
		fs := flag.NewFlagSet("posts", flag.ExitOnError)
		page := fs.Int("page", 1, "page number")
		limit := fs.Int("limit", 10, "page size")
		search := fs.String("search", "", "search text")
		_ = fs.Parse(args)
		result, err := api.Posts(ctx, connection.PostQuery{
			Page:   *page,
			Limit:  *limit,
			Search: *search,
		})
		if err != nil {
			return err
		}
		for _, p := range result.Items {
			marker := " "
			if p.IsLikedByUser {
				marker = "*"
			}
			fmt.Printf("%s #%-4d %-40s by %-12s likes=%d\n",
				marker, p.ID, p.Title, p.Author, p.LikeCount)
		}
		fmt.Printf("%d of %d posts\n", len(result.Items), result.Total)
		return nil

	case "like":
		id, err := argID(args, "like")
		if err != nil {
			return err
		}
		res, err := api.LikePost(ctx, id)
		if err != nil {
			return err
		}
		if res.Liked {
			fmt.Printf("liked post #%d (%d likes)\n", id, res.LikeCount)
		} else {
			fmt.Printf("un-liked post #%d (%d likes)\n", id, res.LikeCount)
		}
		return nil

	case "report":
		id, err := argID(args, "report")
		if err != nil {
			return err
		}
		if err := api.ReportPost(ctx, id); err != nil {
			return err
		}
		fmt.Printf("reported post #%d\n", id)
		return nil

	case "item":
		id, err := argID(args, "item")
		if err != nil {
			return err
		}
		item, err := api.MarketplaceItem(ctx, id)
		if err != nil {
			return err
		}
		status := "available"
		if item.IsSold {
			status = "sold"
		}
		fmt.Printf("#%d %s $%.2f (%s, seller %s)\n",
			item.ID, item.Title, item.Price, status, item.Seller)
		if img := api.ImageURL(item.Image); img != "" {
			fmt.Println("  image:", img)
		}
		return nil

	case "sold":
		id, err := argID(args, "sold")
		if err != nil {
			return err
		}
		if err := api.MarkItemSold(ctx, id); err != nil {
			return err
		}
		fmt.Printf("item #%d marked as sold\n", id)
		return nil

	case "unread":
		count, err := api.UnreadNotificationCount(ctx)
		if err != nil {
			return err
		}
		fmt.Println(count)
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func argID(args []string, command string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%s requires exactly one id argument", command)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}
