package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/luwen/lingoflash/internal/audio"
	"github.com/luwen/lingoflash/internal/config"
	"github.com/luwen/lingoflash/internal/gateway"
	"github.com/luwen/lingoflash/internal/journal"
	"github.com/luwen/lingoflash/internal/logger"
	"github.com/luwen/lingoflash/internal/models"
	"github.com/luwen/lingoflash/internal/session"
	"github.com/luwen/lingoflash/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithOutput(os.Stderr),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("lingoflash study client starting")
	log.Debug("gateway_base_url=%s", cfg.GatewayBaseURL)
	log.Debug("journal_path=%s", cfg.JournalPath)
	log.Debug("audio_player_cmd=%s", cfg.AudioPlayerCmd)

	jnl, err := journal.Open(cfg.JournalPath)
	if err != nil {
		log.Error("failed to open journal: %v", err)
		os.Exit(1)
	}
	defer jnl.Close()

	pool := worker.NewPool(cfg.SubmitWorkerCount, cfg.SubmitQueueSize)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	gw := gateway.New(cfg.GatewayBaseURL, cfg.GatewayToken)
	player := audio.NewManager(
		audio.NewDictResolver(cfg.DictVoiceBaseURL),
		audio.NewExecPlayer(cfg.AudioPlayerCmd),
		audio.WithFailureNotice(func(sourceKey string, _ error) {
			fmt.Fprintf(os.Stderr, "Audio unavailable for %q.\n", sourceKey)
		}),
	)

	in := bufio.NewScanner(os.Stdin)
	if err := runReview(ctx, in, gw, player, jnl, pool); err != nil {
		log.Error("session ended with error: %v", err)
		os.Exit(1)
	}

	if err := runQuiz(ctx, in, gw, jnl, pool); err != nil {
		log.Error("quiz ended with error: %v", err)
	}

	if summary, err := jnl.Summary(ctx); err == nil {
		fmt.Printf("\nToday: %d reviews, %d quizzes, %d mistakes captured.\n",
			summary.ReviewsToday, summary.QuizzesToday, summary.MissedToday)
	}
}

func runReview(ctx context.Context, in *bufio.Scanner, gw gateway.Interface, player session.Audio, jnl session.Recorder, pool session.Dispatcher) error {
	sess := session.NewReview(gw,
		session.WithReviewAudio(player),
		session.WithReviewRecorder(jnl),
		session.WithReviewDispatcher(pool),
	)
	defer sess.Close()

	fmt.Println("Fetching today's queue...")
	if err := sess.FetchQueue(ctx); err != nil {
		fmt.Println("Could not load the queue. Press enter to retry, or q to quit.")
		if !prompt(in) || strings.EqualFold(in.Text(), "q") {
			return err
		}
		if err := sess.FetchQueue(ctx); err != nil {
			return err
		}
	}

	if sess.NothingToReview() {
		fmt.Println("Nothing to review today. 🎉")
		return nil
	}

	for {
		item, ok := sess.CurrentItem()
		if !ok {
			break
		}
		fmt.Printf("\n[%d/%d] %s", sess.Position()+1, sess.QueueLen(), item.Spell)
		if item.Phonetic != "" {
			fmt.Printf("  /%s/", item.Phonetic)
		}
		fmt.Println()
		fmt.Println("(enter = show answer, q = quit)")
		if !prompt(in) || strings.EqualFold(in.Text(), "q") {
			return nil
		}

		if item.Translation != "" {
			fmt.Println(item.Translation)
		}
		if item.AIExample != nil {
			fmt.Printf("e.g. %s\n     %s\n", item.AIExample.English, item.AIExample.Chinese)
		}

		quality, ok := promptQuality(in)
		if !ok {
			return nil
		}
		if err := sess.SubmitResult(quality); err != nil {
			return err
		}
	}

	fmt.Printf("\nDone! Reviewed %d words.\n", sess.QueueLen())
	return nil
}

func runQuiz(ctx context.Context, in *bufio.Scanner, gw gateway.Interface, jnl session.Recorder, pool session.Dispatcher) error {
	fmt.Print("\nTake a reading quiz? (article id, enter to skip): ")
	if !prompt(in) {
		return nil
	}
	articleID, err := strconv.ParseInt(strings.TrimSpace(in.Text()), 10, 64)
	if err != nil {
		return nil
	}

	quiz := session.NewQuiz(gw, articleID, "",
		session.WithQuizRecorder(jnl),
		session.WithQuizDispatcher(pool),
	)

	fmt.Println("Generating questions, this can take a little while...")
	if err := quiz.Initialize(ctx); err != nil {
		fmt.Println("Could not generate a quiz for that article.")
		return err
	}

	for {
		question, ok := quiz.CurrentQuestion()
		if !ok {
			break
		}
		fmt.Printf("\n[%d/%d] %s\n", quiz.Index()+1, quiz.Len(), question.Question)
		for _, opt := range question.Options {
			fmt.Println("  " + opt)
		}

		fmt.Print("Your answer (or q to quit): ")
		if !prompt(in) || strings.EqualFold(in.Text(), "q") {
			return nil
		}
		if err := quiz.SelectOption(in.Text()); err != nil {
			return err
		}
		before := quiz.Score()
		if err := quiz.SubmitAnswer(); err != nil {
			return err
		}
		if quiz.Score() > before {
			fmt.Println("Correct!")
		} else {
			fmt.Printf("Wrong, the answer is %s.\n", question.Answer)
		}
		if question.Explanation != "" {
			fmt.Println(question.Explanation)
		}
		if err := quiz.Advance(); err != nil {
			return err
		}
	}

	fmt.Printf("\nQuiz done: %d/%d (%d%%), %d added to the mistake book.\n",
		quiz.Score(), quiz.Len(), quiz.Percentage(), len(quiz.Missed()))
	return nil
}

func promptQuality(in *bufio.Scanner) (models.Quality, bool) {
	for {
		fmt.Print("How well did you know it? (0 = forgot, 3 = hard, 5 = easy, q = quit): ")
		if !prompt(in) {
			return 0, false
		}
		switch strings.TrimSpace(in.Text()) {
		case "0":
			return models.QualityForgot, true
		case "3":
			return models.QualityHard, true
		case "5":
			return models.QualityEasy, true
		case "q", "Q":
			return 0, false
		}
		fmt.Println("Please answer 0, 3 or 5.")
	}
}

func prompt(in *bufio.Scanner) bool {
	return in.Scan()
}
