package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpin "launchpad/internal/adapters/in/http"
	usecase "launchpad/internal/application/usecase"
	"launchpad/internal/infra/config"
	"launchpad/internal/infra/solana"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if cfg.StateAddress == "" || cfg.ProgramID == "" {
		log.Fatalf("[boot] SALE_PROGRAM_ID and SALE_STATE_ADDRESS are required")
	}
	log.Printf("[boot] cluster=%s program=%s state=%s", cfg.Cluster, cfg.ProgramID, cfg.StateAddress)

	rpc := solana.NewRPCClient(cfg.RPCEndpoint)

	snapshots := solana.NewSnapshotReader(rpc, cfg.StateAddress, solana.PaymentOverride{
		Symbol:   cfg.SPLTokenSymbol,
		Decimals: cfg.SPLTokenDecimals,
	})
	balances := solana.NewBalanceReader(rpc)
	statuses := solana.NewStatusReader(rpc)
	submitter := solana.NewMintSubmitter(rpc, cfg.ProgramID, snapshots)

	keystore, err := solana.NewKeystoreSignerFromEnv()
	if err != nil {
		log.Fatalf("[boot] keystore init failed: %v", err)
	}

	engine := usecase.NewMintEngine(keystore, submitter, statuses, cfg.ConfirmPollRate, cfg.TxTimeout, cfg.Cluster)
	session := usecase.NewSessionUsecase(snapshots, balances, nil, engine)
	defer session.Close()

	// pre-connect the keystore wallet for headless runs
	if addr := keystore.Address(); addr != "" {
		session.SetWallet(addr)
	}
	if err := session.Refresh(ctx); err != nil {
		log.Printf("[boot] WARN initial snapshot refresh failed: %v (retrying on cycle)", err)
	}

	// periodic reconciliation: the authoritative counters live on-chain
	go func() {
		ticker := time.NewTicker(cfg.RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := session.Refresh(ctx); err != nil {
					log.Printf("[refresh] WARN %v", err)
				}
			}
		}
	}()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httpin.NewRouter(httpin.RouterDeps{SessionUC: session}),
	}

	go func() {
		log.Printf("[boot] listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[boot] server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[shutdown] draining")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[shutdown] WARN %v", err)
	}
}
