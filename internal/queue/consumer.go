package queue

import (
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// StartReservationConsumer connects to RabbitMQ, declares the
// reservation.events queue and appends every event to
// logs/reservations.log as a single human-readable line.  It runs a
// reconnect loop with exponential backoff and keeps the server
// operating by rejecting messages it cannot process instead of
// aborting.
func StartReservationConsumer() error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(brokerURL())
        if err != nil {
            log.Printf("reservation-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        if err := consumeLoop(conn); err != nil {
            log.Printf("reservation-consumer: consume loop ended: %v; reconnecting", err)
            time.Sleep(2 * time.Second)
        }
    }
}

func consumeLoop(conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("reservation-consumer: set QoS failed: %v", err)
    }
    if _, err := ch.QueueDeclare(reservationQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(reservationQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := handleMessage(d.Body); err != nil {
            log.Printf("reservation-consumer: handle message failed: %v", err)
            _ = d.Nack(false, false) // reject without requeue to avoid tight loops
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

func handleMessage(body []byte) error {
    var ev ReservationEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if err := os.MkdirAll("logs", 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    fpath := filepath.Join("logs", "reservations.log")
    f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    seats := "[]"
    if len(ev.SeatIDs) > 0 {
        seats = fmt.Sprintf("[%s]", strings.Join(ev.SeatIDs, ","))
    }
    line := fmt.Sprintf("[%s] Reservation %s | reservation_id=%s | ticket_type=%q zone=%q | quantity=%d | total=%.2f | seats=%s\n",
        ev.OccurredAt, ev.Action, ev.ReservationID, ev.TicketTypeName, ev.VenueZone, ev.Quantity, ev.TotalPrice, seats)
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
